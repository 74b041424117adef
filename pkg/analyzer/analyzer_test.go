package analyzer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/analyzer"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/config"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/langid"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules/lexicons"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/signal"
)

// fakeModel is a scriptable model-backed source.
type fakeModel struct {
	name       string
	score      float64
	confidence float64
	err        error
}

func (f *fakeModel) Name() string          { return f.name }
func (f *fakeModel) Kind() risk.SourceKind { return risk.KindModel }

func (f *fakeModel) Score(ctx context.Context, text, language string) (risk.Signal, error) {
	if f.err != nil {
		return risk.Signal{}, f.err
	}
	return risk.Signal{Score: f.score, Confidence: f.confidence}, nil
}

// scriptOnly disables the statistical tier so tests only depend on the
// deterministic built-in cascade.
func scriptOnly() *langid.Identifier {
	return langid.New(langid.WithStatistical(nil))
}

func ruleRegistry(t *testing.T) (*signal.Registry, *lexicons.Store) {
	t.Helper()
	store, err := lexicons.Load()
	if err != nil {
		t.Fatalf("Failed to load lexicons: %v", err)
	}
	registry := signal.NewRegistry()
	for dim, src := range rules.All(store) {
		registry.Register(dim, src)
	}
	return registry, store
}

func TestAnalyzeInsultWithModels(t *testing.T) {
	_, store := ruleRegistry(t)

	registry := signal.NewRegistry()
	registry.Register(risk.Toxicity,
		&fakeModel{name: "toxic-model", score: 0.9, confidence: 0.9},
		rules.NewToxicitySource(store))
	registry.Register(risk.HateTargeting,
		&fakeModel{name: "hate-model", score: 0.2, confidence: 0.9},
		rules.NewHateSource(store))
	registry.Register(risk.EmotionalIntensity,
		&fakeModel{name: "sentiment-model", score: 0.8, confidence: 0.9},
		rules.NewIntensitySource(store))
	registry.Register(risk.PoliticalRelevance,
		rules.NewPoliticalSource(store))

	a := analyzer.New(registry, analyzer.WithIdentifier(scriptOnly()))
	out := a.Analyze(context.Background(), "You're such an IDIOT! I hate you.")

	if out.DetectedLanguage != "en" {
		t.Errorf("DetectedLanguage = %s, want en", out.DetectedLanguage)
	}
	if out.Signals[risk.Toxicity].Score <= 0.5 {
		t.Errorf("toxicity = %v, want > 0.5", out.Signals[risk.Toxicity].Score)
	}
	if out.Signals[risk.EmotionalIntensity].Score <= 0.5 {
		t.Errorf("emotional intensity = %v, want > 0.5", out.Signals[risk.EmotionalIntensity].Score)
	}
	if out.Signals[risk.PoliticalRelevance].Score != 0 {
		t.Errorf("political relevance = %v, want 0", out.Signals[risk.PoliticalRelevance].Score)
	}
	if out.RiskLevel != risk.LevelHigh {
		t.Errorf("RiskLevel = %s, want HIGH (score %v)", out.RiskLevel, out.RiskScore)
	}
	if out.RiskScore < 0.4 || out.RiskScore >= 0.9 {
		t.Errorf("RiskScore = %v, want in [0.4, 0.9)", out.RiskScore)
	}
	if out.Confidence < 0.7 {
		t.Errorf("Confidence = %v, want >= 0.7", out.Confidence)
	}
}

func TestAnalyzeFallsBackToRuleTier(t *testing.T) {
	_, store := ruleRegistry(t)

	registry := signal.NewRegistry()
	registry.Register(risk.Toxicity,
		&fakeModel{name: "toxic-model", err: errors.New("model unavailable")},
		rules.NewToxicitySource(store))
	registry.Register(risk.HateTargeting, rules.NewHateSource(store))
	registry.Register(risk.EmotionalIntensity, rules.NewIntensitySource(store))
	registry.Register(risk.PoliticalRelevance, rules.NewPoliticalSource(store))

	a := analyzer.New(registry, analyzer.WithIdentifier(scriptOnly()))
	out := a.Analyze(context.Background(), "你个二货")

	if out.DetectedLanguage != "zh" {
		t.Errorf("DetectedLanguage = %s, want zh", out.DetectedLanguage)
	}

	tox := out.Signals[risk.Toxicity]
	if !tox.Succeeded {
		t.Fatal("toxicity signal should have succeeded via the rule tier")
	}
	if tox.Kind != risk.KindRule {
		t.Errorf("toxicity Kind = %s, want rule", tox.Kind)
	}
	if tox.Confidence != rules.RuleConfidence {
		t.Errorf("toxicity Confidence = %v, want %v (rule tier cap)", tox.Confidence, rules.RuleConfidence)
	}
	if tox.Score <= 0 {
		t.Errorf("toxicity Score = %v, want > 0 for a lexicon hit", tox.Score)
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	registry, _ := ruleRegistry(t)
	a := analyzer.New(registry, analyzer.WithIdentifier(scriptOnly()))

	out := a.Analyze(context.Background(), "")

	if out.DetectedLanguage != langid.Unknown {
		t.Errorf("DetectedLanguage = %s, want unknown", out.DetectedLanguage)
	}
	if out.RiskLevel != risk.LevelLow {
		t.Errorf("RiskLevel = %s, want LOW", out.RiskLevel)
	}
	for dim, sig := range out.Signals {
		if sig.Score != 0 {
			t.Errorf("%s score = %v, want 0", dim, sig.Score)
		}
	}
	// Short-text rule: rule confidence 0.5 scaled down hard.
	if out.Confidence > rules.RuleConfidence*risk.ShortTextFactor+1e-9 {
		t.Errorf("Confidence = %v, want short-text minimum", out.Confidence)
	}
}

func TestAnalyzeAllSourcesFailing(t *testing.T) {
	registry := signal.NewRegistry()
	for _, dim := range risk.Dimensions() {
		registry.Register(dim, &fakeModel{name: "broken", err: errors.New("down")})
	}

	a := analyzer.New(registry, analyzer.WithIdentifier(scriptOnly()))
	out := a.Analyze(context.Background(), "any text at all here")

	if out.RiskLevel != risk.LevelLow {
		t.Errorf("RiskLevel = %s, want LOW", out.RiskLevel)
	}
	if out.RiskScore != 0 {
		t.Errorf("RiskScore = %v, want 0", out.RiskScore)
	}
	if out.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", out.Confidence)
	}
	for dim, sig := range out.Signals {
		if sig.Succeeded {
			t.Errorf("%s signal marked succeeded, want failed", dim)
		}
	}
}

func TestAnalyzeRecoversFromPanic(t *testing.T) {
	// A nil registry makes the dimension loop panic; the facade must
	// still return a fully populated degraded assessment.
	a := analyzer.New(nil, analyzer.WithIdentifier(scriptOnly()))
	out := a.Analyze(context.Background(), "some text")

	if out.RiskLevel != risk.LevelLow {
		t.Errorf("RiskLevel = %s, want LOW", out.RiskLevel)
	}
	if out.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", out.Confidence)
	}
	if len(out.Signals) != 4 {
		t.Errorf("Signals has %d entries, want 4", len(out.Signals))
	}
}

func TestAnalyzeTextExplicitLanguage(t *testing.T) {
	registry, _ := ruleRegistry(t)
	a := analyzer.New(registry, analyzer.WithIdentifier(scriptOnly()))

	out := a.AnalyzeText(context.Background(), "idiot stupid fool", "en")
	if out.DetectedLanguage != "en" {
		t.Errorf("DetectedLanguage = %s, want en (explicit)", out.DetectedLanguage)
	}
	if out.Signals[risk.Toxicity].Score <= 0 {
		t.Error("explicit-language analysis should still hit the en lexicon")
	}
}

func TestAnalyzeBatchPreservesOrderAndLength(t *testing.T) {
	registry, _ := ruleRegistry(t)

	texts := []string{
		"what a nice day",
		"",
		"you idiot!!!",
		"the government called an election today for the public vote",
	}

	for _, workers := range []int{1, 3} {
		a := analyzer.New(registry,
			analyzer.WithIdentifier(scriptOnly()),
			analyzer.WithBatchWorkers(workers))

		results := a.AnalyzeBatch(context.Background(), texts)
		if len(results) != len(texts) {
			t.Fatalf("workers=%d: got %d results, want %d", workers, len(results), len(texts))
		}

		// Item 2 is the insult, item 3 the political text; their
		// positions verify order is kept.
		if results[2].Signals[risk.Toxicity].Score <= 0 {
			t.Errorf("workers=%d: result 2 lost its toxicity score", workers)
		}
		if results[3].Signals[risk.PoliticalRelevance].Score <= 0 {
			t.Errorf("workers=%d: result 3 lost its political score", workers)
		}
		if results[1].DetectedLanguage != langid.Unknown {
			t.Errorf("workers=%d: empty item language = %s, want unknown", workers, results[1].DetectedLanguage)
		}
	}
}

func TestAnalyzeBatchEmptyInput(t *testing.T) {
	registry, _ := ruleRegistry(t)
	a := analyzer.New(registry, analyzer.WithIdentifier(scriptOnly()))

	if results := a.AnalyzeBatch(context.Background(), nil); len(results) != 0 {
		t.Errorf("got %d results for nil input, want 0", len(results))
	}
	if results := a.AnalyzeBatch(context.Background(), []string{}); len(results) != 0 {
		t.Errorf("got %d results for empty input, want 0", len(results))
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	registry, _ := ruleRegistry(t)
	a := analyzer.New(registry, analyzer.WithIdentifier(scriptOnly()))

	text := "you idiot! they all hate the government"
	first := a.Analyze(context.Background(), text)
	second := a.Analyze(context.Background(), text)

	if first.RiskScore != second.RiskScore {
		t.Errorf("RiskScore differs across runs: %v vs %v", first.RiskScore, second.RiskScore)
	}
	if first.DetectedLanguage != second.DetectedLanguage {
		t.Errorf("DetectedLanguage differs: %s vs %s", first.DetectedLanguage, second.DetectedLanguage)
	}
}

func TestDefaultAnalyzerIsRuleOnly(t *testing.T) {
	out := analyzer.Analyze("you idiot!")
	if !out.Signals[risk.Toxicity].Succeeded {
		t.Fatal("default analyzer should resolve toxicity via rules")
	}
	if out.Signals[risk.Toxicity].Kind != risk.KindRule {
		t.Errorf("Kind = %s, want rule", out.Signals[risk.Toxicity].Kind)
	}
	if analyzer.Default() != analyzer.Default() {
		t.Error("Default() should return the same instance")
	}

	if results := analyzer.AnalyzeBatch([]string{"a", "b"}); len(results) != 2 {
		t.Errorf("AnalyzeBatch returned %d results, want 2", len(results))
	}
}

func TestFromConfigRuleOnly(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Language.Statistical = false

	a, store, err := analyzer.FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}
	if store == nil {
		t.Fatal("FromConfig() returned a nil store")
	}

	chains := a.Chains()
	for _, dim := range risk.Dimensions() {
		chain := chains[dim]
		if len(chain) != 1 {
			t.Errorf("%s chain = %v, want the rule tier only", dim, chain)
		}
	}

	out := a.Analyze(context.Background(), "hello there friend")
	if out.RiskLevel != risk.LevelLow {
		t.Errorf("RiskLevel = %s, want LOW", out.RiskLevel)
	}
}
