package risk

import (
	"encoding/json"
	"math"
	"time"
	"unicode/utf8"
)

// Assessment is the complete analysis outcome for one text. It is created
// fresh per input and never mutated after construction.
type Assessment struct {
	RiskScore        float64
	RiskLevel        Level
	Signals          map[Dimension]Signal
	DetectedLanguage string
	Confidence       float64
	TextLength       int
	Elapsed          time.Duration
}

// Degraded returns the maximally-degraded assessment for a text: level LOW,
// zero score and confidence, every signal flagged unsuccessful. Used when an
// unexpected failure must still yield a well-formed result.
func Degraded(text, language string) Assessment {
	signals := make(map[Dimension]Signal, len(Dimensions()))
	for _, dim := range Dimensions() {
		signals[dim] = Signal{Dimension: dim}
	}
	return Assessment{
		RiskLevel:        LevelLow,
		Signals:          signals,
		DetectedLanguage: language,
		TextLength:       utf8.RuneCountInString(text),
	}
}

// MarshalJSON emits the wire contract: risk_level, risk_score, dimensions,
// detected_language and confidence. Scores carry three decimals, confidence
// two. Everything else on the struct stays in-memory.
func (a Assessment) MarshalJSON() ([]byte, error) {
	dims := make(map[string]float64, len(a.Signals))
	for dim, sig := range a.Signals {
		dims[string(dim)] = round(sig.Score, 3)
	}

	return json.Marshal(struct {
		RiskLevel        Level              `json:"risk_level"`
		RiskScore        float64            `json:"risk_score"`
		Dimensions       map[string]float64 `json:"dimensions"`
		DetectedLanguage string             `json:"detected_language"`
		Confidence       float64            `json:"confidence"`
	}{
		RiskLevel:        a.RiskLevel,
		RiskScore:        round(a.RiskScore, 3),
		Dimensions:       dims,
		DetectedLanguage: a.DetectedLanguage,
		Confidence:       round(a.Confidence, 2),
	})
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

// Degraded dimensions are those whose signal resolved without any source
// succeeding.
func (a Assessment) DegradedDimensions() []Dimension {
	var out []Dimension
	for _, dim := range Dimensions() {
		if !a.Signals[dim].Succeeded {
			out = append(out, dim)
		}
	}
	return out
}

// Explanations renders human-readable notes: one per elevated dimension,
// plus an overall severity note.
func (a Assessment) Explanations() []string {
	var out []string

	notes := []struct {
		dim    Dimension
		strong string
		mild   string
	}{
		{Toxicity, "insulting or aggressive language detected", "contains mildly inappropriate language"},
		{HateTargeting, "hate speech or group-targeting content detected", "contains negative group references"},
		{EmotionalIntensity, "extremely strong emotional tone", "elevated emotional tone"},
		{PoliticalRelevance, "touches on sensitive political topics", "contains political references"},
	}

	for _, note := range notes {
		score := a.Signals[note.dim].Score
		switch {
		case score > 0.6:
			out = append(out, note.strong)
		case score > 0.3:
			out = append(out, note.mild)
		}
	}

	switch a.RiskLevel {
	case LevelSevere:
		out = append(out, "severe risk: content likely violates platform policy")
	case LevelHigh:
		out = append(out, "high risk: human review recommended")
	case LevelModerate:
		out = append(out, "moderate risk: worth monitoring")
	}

	if len(out) == 0 && a.RiskLevel == LevelLow {
		out = append(out, "content appears neutral, no obvious risk")
	}
	return out
}
