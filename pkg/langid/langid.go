// Package langid identifies the language of short text inputs through a
// prioritized cascade: a statistical detector when available, then Unicode
// script ranges, then common-word lookup. Detection never fails; inputs
// with no usable signal come back as Unknown.
package langid

import "strings"

// Unknown is the sentinel returned when no strategy yields a signal.
const Unknown = "unknown"

// Statistical is an optional external detector consulted before the
// built-in strategies. Implementations report ok=false to fall through.
type Statistical interface {
	DetectLanguage(text string) (code string, ok bool)
}

// Identifier detects languages. Safe for concurrent use.
type Identifier struct {
	statistical Statistical
}

// Option configures an Identifier.
type Option func(*Identifier)

// WithStatistical replaces the default statistical detector. Passing nil
// disables the statistical tier entirely.
func WithStatistical(s Statistical) Option {
	return func(id *Identifier) {
		id.statistical = s
	}
}

// New builds an identifier. By default the statistical tier is backed by
// the lingua detector restricted to the supported languages.
func New(opts ...Option) *Identifier {
	id := &Identifier{statistical: newLinguaDetector()}
	for _, opt := range opts {
		opt(id)
	}
	return id
}

// Detect returns a lowercase language code for text, or Unknown. Results
// are deterministic for the same text and the same tier availability.
func (id *Identifier) Detect(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Unknown
	}

	if id.statistical != nil {
		if code, ok := id.statistical.DetectLanguage(trimmed); ok && code != "" {
			return code
		}
	}

	if code := detectByScript(trimmed); code != "" {
		return code
	}

	if code := detectByStopwords(trimmed); code != "" {
		return code
	}

	return Unknown
}
