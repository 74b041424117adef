package risk

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinTextRunes and MinTextTokens bound what counts as enough signal for
	// a trustworthy confidence. Shorter inputs keep their scores but have
	// the overall confidence scaled down by ShortTextFactor.
	MinTextRunes  = 5
	MinTextTokens = 2

	// ShortTextFactor scales the overall confidence of short inputs.
	ShortTextFactor = 0.25
)

// Aggregate combines per-dimension signals into one assessment using the
// given weights and thresholds. Missing dimensions count as degraded zero
// signals. The result is always fully populated, even when every signal is
// degraded: risk 0, level LOW, confidence 0, with the failed signals kept
// for explainability.
func Aggregate(text, language string, signals map[Dimension]Signal, weights Weights, thresholds Thresholds) Assessment {
	var score, confidence float64
	out := make(map[Dimension]Signal, len(signals))

	for _, dim := range Dimensions() {
		sig, ok := signals[dim]
		if !ok {
			sig = Signal{Dimension: dim}
		}
		out[dim] = sig

		weight := weights[dim]
		score += weight * Clamp01(sig.Score)
		confidence += weight * Clamp01(sig.Confidence)
	}

	if ShortText(text) {
		confidence *= ShortTextFactor
	}

	return Assessment{
		RiskScore:        Clamp01(score),
		RiskLevel:        thresholds.Level(Clamp01(score)),
		Signals:          out,
		DetectedLanguage: language,
		Confidence:       Clamp01(confidence),
		TextLength:       utf8.RuneCountInString(text),
	}
}

// ShortText reports whether text carries too little signal for a
// trustworthy confidence.
func ShortText(text string) bool {
	if utf8.RuneCountInString(text) < MinTextRunes {
		return true
	}
	return TokenCount(text) < MinTextTokens
}

// TokenCount counts whitespace-separated words. Fields dominated by CJK
// characters count one token per rune, since those scripts do not separate
// words with spaces.
func TokenCount(text string) int {
	count := 0
	for _, field := range strings.Fields(text) {
		cjk := 0
		for _, r := range field {
			if isCJK(r) {
				cjk++
			}
		}
		if cjk > 0 {
			count += cjk
		} else {
			count++
		}
	}
	return count
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
