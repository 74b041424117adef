package analyzer

import (
	"fmt"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/classifier"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/config"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/langid"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules/lexicons"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/signal"
)

// BuildRegistry wires the production chains from config: for each
// dimension, the configured classifier tiers in order, then the rule
// fallback. The rule tier is always present, so every chain can
// produce a signal with no endpoint reachable.
func BuildRegistry(cfg *config.Config, store *lexicons.Store) (*signal.Registry, error) {
	registry := signal.NewRegistry()
	ruleSources := rules.All(store)

	for _, dim := range risk.Dimensions() {
		for i, tierCfg := range cfg.Classifiers[dim] {
			if tierCfg.Dimension == "" {
				tierCfg.Dimension = dim
			}
			src, err := classifier.New(tierCfg)
			if err != nil {
				return nil, fmt.Errorf("classifier %d for %s: %w", i, dim, err)
			}
			registry.Register(dim, src)
		}
		registry.Register(dim, ruleSources[dim])
	}

	return registry, nil
}

// FromConfig builds a fully wired analyzer: lexicon store (with any
// override directory merged), registry, and facade options.
func FromConfig(cfg *config.Config) (*Analyzer, *lexicons.Store, error) {
	store, err := lexicons.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Lexicons.OverrideDir != "" {
		if err := store.MergeDir(cfg.Lexicons.OverrideDir); err != nil {
			return nil, nil, err
		}
	}

	registry, err := BuildRegistry(cfg, store)
	if err != nil {
		return nil, nil, err
	}

	opts := []Option{
		WithWeights(cfg.Scoring.Weights),
		WithThresholds(cfg.Scoring.Thresholds),
		WithBatchWorkers(cfg.Batch.Workers),
	}
	if !cfg.Language.Statistical {
		opts = append(opts, WithIdentifier(langid.New(langid.WithStatistical(nil))))
	}

	return New(registry, opts...), store, nil
}
