package rules

import (
	"context"
	"strings"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules/lexicons"
)

// PoliticalSource estimates how political the text is from the
// political-entity lexicon.
type PoliticalSource struct {
	store *lexicons.Store
}

// NewPoliticalSource creates the political-relevance rule fallback.
func NewPoliticalSource(store *lexicons.Store) *PoliticalSource {
	return &PoliticalSource{store: store}
}

// Name returns the source name.
func (s *PoliticalSource) Name() string {
	return "rule:political_relevance"
}

// Kind reports that this source is rule-backed.
func (s *PoliticalSource) Kind() risk.SourceKind {
	return risk.KindRule
}

// Score maps political-entity hits to a stepped score: no hits is 0,
// one hit 0.3, two 0.5, three or more 0.7. Mentioning politics is not
// in itself high risk, so the steps top out well below 1.
func (s *PoliticalSource) Score(ctx context.Context, text, language string) (risk.Signal, error) {
	if err := checkInput(text); err != nil {
		return risk.Signal{}, err
	}

	lowered := strings.ToLower(text)
	hits := countHits(lowered, s.store.Terms(lexicons.Political, language))

	var score float64
	switch {
	case hits >= 3:
		score = 0.7
	case hits >= 2:
		score = 0.5
	case hits >= 1:
		score = 0.3
	}

	return risk.Signal{Score: score, Confidence: RuleConfidence}, nil
}
