package signal

import (
	"context"
	"fmt"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
)

// Registry holds, per dimension, an ordered list of sources: primary
// model first, then any secondary models, then the rule fallback.
// Register all chains before the first Resolve; the registry is
// read-only afterwards and safe for concurrent use.
type Registry struct {
	chains map[risk.Dimension][]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		chains: make(map[risk.Dimension][]Source),
	}
}

// Register appends sources to the dimension's chain in fallback order.
func (r *Registry) Register(dim risk.Dimension, sources ...Source) {
	r.chains[dim] = append(r.chains[dim], sources...)
}

// Resolve tries the dimension's sources in order and returns the first
// successful signal, stamped with the tier that produced it. A source
// error or panic counts as a tier failure and falls through. When every
// tier fails, or no chain is registered, Resolve returns the fully
// degraded zero signal (Succeeded=false) rather than an error: a single
// dimension's total failure must never abort the analysis.
func (r *Registry) Resolve(ctx context.Context, dim risk.Dimension, text, language string) risk.Signal {
	for _, src := range r.chains[dim] {
		sig, err := attempt(ctx, src, text, language)
		if err != nil {
			continue
		}
		sig.Dimension = dim
		return sig
	}
	return risk.Signal{Dimension: dim}
}

// attempt invokes one source, converting panics into errors so a broken
// tier degrades like a failing one.
func attempt(ctx context.Context, src Source, text, language string) (sig risk.Signal, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			sig = risk.Signal{}
			err = fmt.Errorf("source %s panicked: %v", src.Name(), rec)
		}
	}()

	sig, err = src.Score(ctx, text, language)
	if err != nil {
		return risk.Signal{}, err
	}

	sig.Score = risk.Clamp01(sig.Score)
	sig.Confidence = risk.Clamp01(sig.Confidence)
	sig.Kind = src.Kind()
	sig.Source = src.Name()
	sig.Succeeded = true
	return sig, nil
}

// Sources returns the dimension's sources in fallback order. Callers
// must not mutate the returned slice.
func (r *Registry) Sources(dim risk.Dimension) []Source {
	return r.chains[dim]
}

// Chain returns the names of the dimension's sources in fallback order.
func (r *Registry) Chain(dim risk.Dimension) []string {
	sources := r.chains[dim]
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name())
	}
	return names
}

// Chains describes every registered chain, keyed by dimension.
func (r *Registry) Chains() map[risk.Dimension][]string {
	out := make(map[risk.Dimension][]string, len(r.chains))
	for dim := range r.chains {
		out[dim] = r.Chain(dim)
	}
	return out
}
