package rules

import (
	"context"
	"strings"
	"unicode"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules/lexicons"
)

// IntensitySource estimates emotional intensity from punctuation
// density, shouting ratio, and intensifier words.
type IntensitySource struct {
	store *lexicons.Store
}

// NewIntensitySource creates the emotional-intensity rule fallback.
func NewIntensitySource(store *lexicons.Store) *IntensitySource {
	return &IntensitySource{store: store}
}

// Name returns the source name.
func (s *IntensitySource) Name() string {
	return "rule:emotional_intensity"
}

// Kind reports that this source is rule-backed.
func (s *IntensitySource) Kind() risk.SourceKind {
	return risk.KindRule
}

// Score rates how emotionally charged the text is. Exclamation marks
// score in tiers (5+ → 0.4, 3+ → 0.3, 1+ → 0.15), three or more
// question marks add 0.2, a mostly-uppercase text over 20 runes adds
// 0.3, and intensifier words add up to 0.3.
func (s *IntensitySource) Score(ctx context.Context, text, language string) (risk.Signal, error) {
	if err := checkInput(text); err != nil {
		return risk.Signal{}, err
	}

	score := 0.0

	switch excl := strings.Count(text, "!"); {
	case excl >= 5:
		score += 0.4
	case excl >= 3:
		score += 0.3
	case excl >= 1:
		score += 0.15
	}

	if strings.Count(text, "?") >= 3 {
		score += 0.2
	}

	runes := []rune(text)
	if len(runes) > 20 {
		upper := 0
		for _, r := range runes {
			if unicode.IsUpper(r) {
				upper++
			}
		}
		if float64(upper)/float64(len(runes)) > 0.5 {
			score += 0.3
		}
	}

	lowered := strings.ToLower(text)
	hits := countHits(lowered, s.store.Terms(lexicons.Intensity, language))
	score += capAt(float64(hits)*0.1, 0.3)

	return risk.Signal{Score: capAt(score, 1.0), Confidence: RuleConfidence}, nil
}
