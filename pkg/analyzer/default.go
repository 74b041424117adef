package analyzer

import (
	"context"
	"sync"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules/lexicons"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/signal"
)

var (
	defaultOnce     sync.Once
	defaultAnalyzer *Analyzer
)

// Default returns the process-wide rule-only analyzer, built lazily on
// first use. It needs no configuration and no endpoints, which makes it
// the right entry point for library consumers; services should wire
// their own analyzer with FromConfig instead.
func Default() *Analyzer {
	defaultOnce.Do(func() {
		registry := signal.NewRegistry()
		for dim, src := range rules.All(lexicons.MustLoad()) {
			registry.Register(dim, src)
		}
		defaultAnalyzer = New(registry)
	})
	return defaultAnalyzer
}

// Analyze scores one text with the default analyzer.
func Analyze(text string) risk.Assessment {
	return Default().Analyze(context.Background(), text)
}

// AnalyzeBatch scores a batch with the default analyzer.
func AnalyzeBatch(texts []string) []risk.Assessment {
	return Default().AnalyzeBatch(context.Background(), texts)
}
