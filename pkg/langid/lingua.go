package langid

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// linguaDetector adapts the lingua statistical detector to the Statistical
// interface, restricted to the languages the rule lexicons cover so its
// answers stay deterministic.
type linguaDetector struct {
	detector lingua.LanguageDetector
}

func newLinguaDetector() *linguaDetector {
	languages := []lingua.Language{
		lingua.English,
		lingua.Chinese,
		lingua.Japanese,
		lingua.Korean,
		lingua.French,
		lingua.German,
		lingua.Spanish,
		lingua.Russian,
		lingua.Arabic,
	}

	return &linguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

func (d *linguaDetector) DetectLanguage(text string) (string, bool) {
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
