package rules

import (
	"context"
	"strings"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules/lexicons"
)

// ToxicitySource estimates insulting or abusive language from the
// toxicity lexicon plus shouting and exclamation heuristics.
type ToxicitySource struct {
	store *lexicons.Store
}

// NewToxicitySource creates the toxicity rule fallback.
func NewToxicitySource(store *lexicons.Store) *ToxicitySource {
	return &ToxicitySource{store: store}
}

// Name returns the source name.
func (s *ToxicitySource) Name() string {
	return "rule:toxicity"
}

// Kind reports that this source is rule-backed.
func (s *ToxicitySource) Kind() risk.SourceKind {
	return risk.KindRule
}

// Score rates text for toxicity. Lexicon hits contribute up to 0.6,
// an all-caps text over 10 runes adds 0.3, and exclamation marks add
// up to 0.2. The total is capped at 1.0.
func (s *ToxicitySource) Score(ctx context.Context, text, language string) (risk.Signal, error) {
	if err := checkInput(text); err != nil {
		return risk.Signal{}, err
	}

	lowered := strings.ToLower(text)
	score := 0.0

	hits := countHits(lowered, s.store.Terms(lexicons.Toxicity, language))
	if hits > 0 {
		score += capAt(float64(hits)*0.15, 0.6)
	}

	if len([]rune(text)) > 10 && allUpper(text) {
		score += 0.3
	}

	if excl := strings.Count(text, "!"); excl > 0 {
		score += capAt(float64(excl)*0.05, 0.2)
	}

	return risk.Signal{Score: capAt(score, 1.0), Confidence: RuleConfidence}, nil
}
