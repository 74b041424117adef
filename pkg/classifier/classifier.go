// Package classifier implements the model-backed signal sources. Each
// source wraps one remote classifier endpoint for one dimension and maps
// its labels into a sub-score through an explicitly configured label
// mapping. Two protocols are supported: "textclass" for inference
// endpoints that return label/score pairs, and "llmjudge" for local LLM
// endpoints that return a JSON verdict.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/signal"
)

const (
	// MaxInputChars is the rune cap on text sent to a classifier.
	MaxInputChars = 512

	// DefaultModelConfidence stands in when a classifier does not report
	// a usable probability of its own.
	DefaultModelConfidence = 0.85

	// DefaultTimeout bounds one inference call, retries included.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries bounds retry attempts on transient failures.
	DefaultMaxRetries = 2
)

// ErrUnavailable indicates the classifier endpoint could not be reached.
var ErrUnavailable = errors.New("classifier endpoint unavailable")

// Config describes one classifier tier. The mapping is part of the
// configuration: how a model's labels translate to a dimension score is
// pinned up front, never inferred from responses.
type Config struct {
	Protocol   string         `yaml:"protocol"` // "textclass" or "llmjudge"
	Name       string         `yaml:"name,omitempty"`
	Endpoint   string         `yaml:"endpoint"`
	Model      string         `yaml:"model,omitempty"`
	Dimension  risk.Dimension `yaml:"dimension,omitempty"`
	Mapping    LabelMapping   `yaml:"mapping,omitempty"`
	Timeout    time.Duration  `yaml:"timeout,omitempty"`
	MaxRetries uint64         `yaml:"max_retries,omitempty"`
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.Name == "" {
		c.Name = c.Protocol
		if c.Model != "" {
			c.Name = c.Protocol + ":" + c.Model
		}
	}
	return c
}

// LabelRule scales the reported score when the label contains a
// substring, case-insensitively. The first matching rule wins.
type LabelRule struct {
	Contains string  `yaml:"contains"`
	Scale    float64 `yaml:"scale"`
}

// LabelMapping translates a classifier's (label, score) output into a
// dimension sub-score in [0,1].
type LabelMapping struct {
	Rules []LabelRule `yaml:"rules"`

	// DefaultScale applies when no rule matches.
	DefaultScale float64 `yaml:"default_scale"`

	// Complement, for binary classifiers, maps an unmatched label to
	// 1-score instead of scaling: the probability of the negative class
	// is one minus the probability of the positive one.
	Complement bool `yaml:"complement"`
}

// Apply maps one classifier output to a dimension score.
func (m LabelMapping) Apply(label string, score float64) float64 {
	lowered := strings.ToLower(label)
	for _, rule := range m.Rules {
		if strings.Contains(lowered, strings.ToLower(rule.Contains)) {
			return risk.Clamp01(score * rule.Scale)
		}
	}
	if m.Complement {
		return risk.Clamp01(1 - score)
	}
	return risk.Clamp01(score * m.DefaultScale)
}

// ToxicityMapping maps a binary toxic/neutral classifier: the toxic
// label passes through, anything else complements to P(toxic).
func ToxicityMapping() LabelMapping {
	return LabelMapping{
		Rules:      []LabelRule{{Contains: "toxic", Scale: 1.0}},
		Complement: true,
	}
}

// HateMapping maps a hate-speech classifier's labels.
func HateMapping() LabelMapping {
	return LabelMapping{
		Rules: []LabelRule{
			{Contains: "hate", Scale: 1.2},
			{Contains: "offensive", Scale: 1.2},
		},
		DefaultScale: 0.3,
	}
}

// SentimentMapping shapes a general sentiment model into emotional
// intensity: negative sentiment amplifies, positive dampens, neutral
// lands in between.
func SentimentMapping() LabelMapping {
	return LabelMapping{
		Rules: []LabelRule{
			{Contains: "negative", Scale: 1.2},
			{Contains: "positive", Scale: 0.3},
		},
		DefaultScale: 0.5,
	}
}

// Factory creates a source from its config.
type Factory func(cfg Config) (signal.Source, error)

var factories = make(map[string]Factory)

// RegisterProtocol registers a factory for a protocol name.
func RegisterProtocol(protocol string, factory Factory) {
	factories[protocol] = factory
}

// New creates a classifier source from config.
func New(cfg Config) (signal.Source, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("classifier %q has no endpoint", cfg.Name)
	}
	factory, ok := factories[cfg.Protocol]
	if !ok {
		return nil, fmt.Errorf("unknown classifier protocol: %s", cfg.Protocol)
	}
	return factory(cfg.withDefaults())
}

// Protocols returns the registered protocol names.
func Protocols() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// Truncate caps text at MaxInputChars runes before it goes on the wire.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxInputChars {
		return text
	}
	return string(runes[:MaxInputChars])
}

// Prober is implemented by sources that can report endpoint liveness.
// The daemon probes tiers at startup to log which ones are reachable;
// an unreachable tier is a warning, not an error, since the chain
// degrades past it.
type Prober interface {
	Available(ctx context.Context) bool
}
