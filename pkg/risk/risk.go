// Package risk defines the scoring model shared by every component:
// dimensions, weights, level thresholds, and per-dimension signals.
package risk

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Dimension identifies one of the fixed risk axes.
type Dimension string

const (
	Toxicity           Dimension = "toxicity"
	HateTargeting      Dimension = "hate_targeting"
	EmotionalIntensity Dimension = "emotional_intensity"
	PoliticalRelevance Dimension = "political_relevance"
)

// Dimensions returns the four risk dimensions in canonical order.
func Dimensions() []Dimension {
	return []Dimension{Toxicity, HateTargeting, EmotionalIntensity, PoliticalRelevance}
}

// ParseDimension converts a string into a known dimension.
func ParseDimension(s string) (Dimension, error) {
	for _, dim := range Dimensions() {
		if string(dim) == s {
			return dim, nil
		}
	}
	return "", fmt.Errorf("unknown risk dimension: %s", s)
}

// SourceKind distinguishes model-backed from rule-backed signal sources.
type SourceKind string

const (
	KindModel SourceKind = "model"
	KindRule  SourceKind = "rule"
)

// Level is the coarse risk bucket derived from the composite score.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
	LevelSevere   Level = "SEVERE"
)

// Signal is the outcome of resolving one dimension for one text.
type Signal struct {
	Dimension  Dimension  `json:"dimension"`
	Score      float64    `json:"score"`      // 0.0 to 1.0
	Confidence float64    `json:"confidence"` // 0.0 to 1.0
	Kind       SourceKind `json:"kind"`
	Source     string     `json:"source"` // name of the tier that produced it
	Succeeded  bool       `json:"succeeded"`
}

// Weights maps each dimension to its share of the composite score.
type Weights map[Dimension]float64

// DefaultWeights returns the production weights.
func DefaultWeights() Weights {
	return Weights{
		Toxicity:           0.35,
		HateTargeting:      0.35,
		EmotionalIntensity: 0.20,
		PoliticalRelevance: 0.10,
	}
}

// Validate checks that exactly the known dimensions are present, that each
// weight is in (0,1], and that the weights sum to 1.
func (w Weights) Validate() error {
	var errs []string

	for _, dim := range Dimensions() {
		weight, ok := w[dim]
		if !ok {
			errs = append(errs, fmt.Sprintf("missing weight for dimension %s", dim))
			continue
		}
		if weight <= 0 || weight > 1 {
			errs = append(errs, fmt.Sprintf("weight for %s must be in (0,1], got %v", dim, weight))
		}
	}

	for dim := range w {
		if _, err := ParseDimension(string(dim)); err != nil {
			errs = append(errs, err.Error())
		}
	}

	sum := 0.0
	for _, weight := range w {
		sum += weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		errs = append(errs, fmt.Sprintf("weights must sum to 1.0, got %v", sum))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Thresholds holds the lower bound of each level above LOW. Levels cover
// half-open intervals: LOW [0,Moderate), MODERATE [Moderate,High),
// HIGH [High,Severe), SEVERE [Severe,1]. The bounds leave no gaps.
type Thresholds struct {
	Moderate float64 `yaml:"moderate"`
	High     float64 `yaml:"high"`
	Severe   float64 `yaml:"severe"`
}

// DefaultThresholds returns the production level boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Moderate: 0.2, High: 0.4, Severe: 0.9}
}

// Validate checks that the bounds are strictly ordered within (0,1].
func (t Thresholds) Validate() error {
	var errs []string

	if t.Moderate <= 0 {
		errs = append(errs, fmt.Sprintf("moderate threshold must be positive, got %v", t.Moderate))
	}
	if t.High <= t.Moderate {
		errs = append(errs, fmt.Sprintf("high threshold %v must exceed moderate %v", t.High, t.Moderate))
	}
	if t.Severe <= t.High {
		errs = append(errs, fmt.Sprintf("severe threshold %v must exceed high %v", t.Severe, t.High))
	}
	if t.Severe > 1 {
		errs = append(errs, fmt.Sprintf("severe threshold must be at most 1, got %v", t.Severe))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Level maps a composite score to its risk bucket. Boundary values belong
// to the higher level.
func (t Thresholds) Level(score float64) Level {
	switch {
	case score >= t.Severe:
		return LevelSevere
	case score >= t.High:
		return LevelHigh
	case score >= t.Moderate:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Clamp01 bounds v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
