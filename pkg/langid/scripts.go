package langid

import "unicode"

// scriptOrder fixes the tie-break order so plurality ties resolve the same
// way on every call.
var scriptOrder = []string{"zh", "ja", "ko", "ar", "ru"}

// detectByScript tallies rune membership in the known script ranges and
// returns the language with the plurality of matches. Latin runs are not
// counted: a Latin plurality alone cannot tell the Latin-script languages
// apart, so those inputs fall through to the stopword tier.
func detectByScript(text string) string {
	counts := make(map[string]int, len(scriptOrder))

	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			counts["ja"]++
		case unicode.Is(unicode.Han, r):
			counts["zh"]++
		case unicode.Is(unicode.Hangul, r):
			counts["ko"]++
		case unicode.Is(unicode.Arabic, r):
			counts["ar"]++
		case unicode.Is(unicode.Cyrillic, r):
			counts["ru"]++
		}
	}

	best := ""
	bestCount := 0
	for _, code := range scriptOrder {
		if counts[code] > bestCount {
			best = code
			bestCount = counts[code]
		}
	}
	return best
}
