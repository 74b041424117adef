package langid

import (
	"strings"
	"unicode"
)

// stopwordOrder fixes iteration order for deterministic tie-breaks.
var stopwordOrder = []string{"en", "fr", "de", "es"}

// stopwords holds a handful of very common words per supported
// Latin-script language. The lists only need to separate these languages
// from each other, not to be exhaustive. Script-detectable languages
// (zh/ja/ko/ar/ru) never reach this tier: their runs survive
// tokenization as single multi-character tokens a word set cannot match,
// and the script tier claims them first anyway.
var stopwords = map[string]map[string]bool{
	"en": wordSet("the", "and", "you", "that", "have", "for", "with"),
	"fr": wordSet("le", "la", "et", "les", "des", "est", "pas"),
	"de": wordSet("der", "die", "das", "und", "ist", "nicht"),
	"es": wordSet("el", "la", "y", "en", "que", "los", "las"),
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// detectByStopwords tokenizes the lowercased text and returns the language
// with the most common-word hits, or "" when nothing matches.
func detectByStopwords(text string) string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(tokens) == 0 {
		return ""
	}

	best := ""
	bestCount := 0
	for _, code := range stopwordOrder {
		set := stopwords[code]
		count := 0
		for _, token := range tokens {
			if set[token] {
				count++
			}
		}
		if count > bestCount {
			best = code
			bestCount = count
		}
	}
	return best
}
