// Package analyzer orchestrates one analysis: detect the language once,
// resolve every risk dimension through the signal registry, aggregate.
// Analyze never panics and never returns a partial result; anything
// unexpected downstream degrades to the well-formed LOW assessment.
package analyzer

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/langid"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/signal"
)

// Analyzer is the analysis facade. It is read-only after construction
// and safe for concurrent use.
type Analyzer struct {
	registry     *signal.Registry
	identifier   *langid.Identifier
	weights      risk.Weights
	thresholds   risk.Thresholds
	batchWorkers int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithIdentifier replaces the default language identifier.
func WithIdentifier(id *langid.Identifier) Option {
	return func(a *Analyzer) {
		a.identifier = id
	}
}

// WithWeights replaces the default dimension weights. The caller is
// responsible for passing validated weights.
func WithWeights(w risk.Weights) Option {
	return func(a *Analyzer) {
		a.weights = w
	}
}

// WithThresholds replaces the default level thresholds.
func WithThresholds(t risk.Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithBatchWorkers bounds how many batch items run concurrently.
// Values below 2 keep batches sequential.
func WithBatchWorkers(n int) Option {
	return func(a *Analyzer) {
		a.batchWorkers = n
	}
}

// New creates an analyzer over the given registry.
func New(registry *signal.Registry, opts ...Option) *Analyzer {
	a := &Analyzer{
		registry:     registry,
		identifier:   langid.New(),
		weights:      risk.DefaultWeights(),
		thresholds:   risk.DefaultThresholds(),
		batchWorkers: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores one text, detecting its language first.
func (a *Analyzer) Analyze(ctx context.Context, text string) risk.Assessment {
	return a.AnalyzeText(ctx, text, "auto")
}

// AnalyzeText scores one text with an explicit language. Pass "" or
// "auto" to detect the language instead. The returned assessment is
// always fully populated.
func (a *Analyzer) AnalyzeText(ctx context.Context, text, language string) (out risk.Assessment) {
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Analysis panic recovered, returning degraded assessment: %v", rec)
			out = risk.Degraded(text, langid.Unknown)
			out.Elapsed = time.Since(start)
		}
	}()

	lang := language
	if lang == "" || lang == "auto" {
		lang = a.identifier.Detect(text)
	}

	signals := make(map[risk.Dimension]risk.Signal, len(risk.Dimensions()))
	for _, dim := range risk.Dimensions() {
		signals[dim] = a.registry.Resolve(ctx, dim, text, lang)
	}

	out = risk.Aggregate(text, lang, signals, a.weights, a.thresholds)
	out.Elapsed = time.Since(start)
	return out
}

// AnalyzeBatch scores each text independently. The result slice has
// the same length and order as the input; one item's failure never
// touches the others.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, texts []string) []risk.Assessment {
	results := make([]risk.Assessment, len(texts))

	if a.batchWorkers < 2 || len(texts) < 2 {
		for i, text := range texts {
			results[i] = a.Analyze(ctx, text)
		}
		return results
	}

	// Analyze never returns an error, so the group is used purely for
	// bounded fan-out. Results land by index, preserving order.
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(a.batchWorkers)
	for i, text := range texts {
		i, text := i, text
		group.Go(func() error {
			results[i] = a.Analyze(ctx, text)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

// Chains describes the configured fallback chains, for diagnostics.
func (a *Analyzer) Chains() map[risk.Dimension][]string {
	return a.registry.Chains()
}

// Sources returns the dimension's sources in fallback order.
func (a *Analyzer) Sources(dim risk.Dimension) []signal.Source {
	return a.registry.Sources(dim)
}
