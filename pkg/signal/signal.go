// Package signal defines the source contract shared by model-backed and
// rule-backed scorers, and the registry that resolves each risk dimension
// through an ordered fallback chain.
package signal

import (
	"context"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
)

// Source produces a sub-score for one dimension. Implementations fill
// Score and Confidence; the registry stamps the identity fields
// (Dimension, Kind, Source, Succeeded) on every result, so sources never
// need to set them. A source that cannot score the input returns an
// error and the registry falls through to the next tier.
type Source interface {
	// Name identifies the tier in chains and in assessment output.
	Name() string

	// Kind reports whether the source is model-backed or rule-backed.
	Kind() risk.SourceKind

	// Score rates text on the source's dimension. Both values must be
	// in [0,1]; out-of-range values are clamped by the registry.
	Score(ctx context.Context, text, language string) (risk.Signal, error)
}
