// Package rules implements the rule-backed signal sources that anchor
// every degradation chain. They score text with keyword lexicons and
// surface heuristics, so they work without any model endpoint and only
// fail on malformed input.
package rules

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules/lexicons"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/signal"
)

// RuleConfidence is the fixed confidence every rule source reports.
// It sits below the model tier's confidence so downstream consumers can
// tell a fallback result from a model result.
const RuleConfidence = 0.5

// ErrMalformedInput is returned when text is not valid UTF-8. It is the
// only way a rule source fails.
var ErrMalformedInput = errors.New("text is not valid utf-8")

// All returns one rule source per dimension, backed by store.
func All(store *lexicons.Store) map[risk.Dimension]signal.Source {
	return map[risk.Dimension]signal.Source{
		risk.Toxicity:           NewToxicitySource(store),
		risk.HateTargeting:      NewHateSource(store),
		risk.EmotionalIntensity: NewIntensitySource(store),
		risk.PoliticalRelevance: NewPoliticalSource(store),
	}
}

func checkInput(text string) error {
	if !utf8.ValidString(text) {
		return ErrMalformedInput
	}
	return nil
}

// countHits counts how many lexicon terms occur in the lowercased text.
// Substring matching on purpose: CJK languages do not separate words
// with spaces, so token matching would miss them.
func countHits(lowered string, terms []string) int {
	hits := 0
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			hits++
		}
	}
	return hits
}

// allUpper reports whether text has at least one cased letter and no
// lowercase ones, i.e. the whole text is shouted.
func allUpper(text string) bool {
	cased := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func capAt(v, cap float64) float64 {
	if v > cap {
		return cap
	}
	return v
}
