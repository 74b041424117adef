package rules

import (
	"context"
	"regexp"
	"strings"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules/lexicons"
)

// groupPatterns match generalizing statements about a group. One match
// is enough; piling on more patterns does not make the text worse.
var groupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`all\s+\w+\s+are`),
	regexp.MustCompile(`every\s+\w+\s+is`),
	regexp.MustCompile(`they\s+all`),
	regexp.MustCompile(`those\s+\w+\s+`),
}

// HateSource estimates hate speech and group targeting from the hate
// lexicon plus group-generalization patterns.
type HateSource struct {
	store *lexicons.Store
}

// NewHateSource creates the hate-targeting rule fallback.
func NewHateSource(store *lexicons.Store) *HateSource {
	return &HateSource{store: store}
}

// Name returns the source name.
func (s *HateSource) Name() string {
	return "rule:hate_targeting"
}

// Kind reports that this source is rule-backed.
func (s *HateSource) Kind() risk.SourceKind {
	return risk.KindRule
}

// Score rates text for group-directed hostility. Lexicon hits
// contribute up to 0.5 and a group-targeting pattern adds 0.3 once.
func (s *HateSource) Score(ctx context.Context, text, language string) (risk.Signal, error) {
	if err := checkInput(text); err != nil {
		return risk.Signal{}, err
	}

	lowered := strings.ToLower(text)
	score := 0.0

	hits := countHits(lowered, s.store.Terms(lexicons.Hate, language))
	if hits > 0 {
		score += capAt(float64(hits)*0.2, 0.5)
	}

	for _, pattern := range groupPatterns {
		if pattern.MatchString(lowered) {
			score += 0.3
			break
		}
	}

	return risk.Signal{Score: capAt(score, 1.0), Confidence: RuleConfidence}, nil
}
