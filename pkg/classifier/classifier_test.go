package classifier_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/classifier"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
)

func TestLabelMappingApply(t *testing.T) {
	tests := []struct {
		name    string
		mapping classifier.LabelMapping
		label   string
		score   float64
		want    float64
	}{
		{"toxic label passes through", classifier.ToxicityMapping(), "toxic", 0.9, 0.9},
		{"neutral label complements", classifier.ToxicityMapping(), "neutral", 0.9, 0.1},
		{"case insensitive match", classifier.ToxicityMapping(), "TOXIC", 0.7, 0.7},
		{"hate label amplified", classifier.HateMapping(), "hate", 0.5, 0.6},
		{"offensive label amplified", classifier.HateMapping(), "offensive", 0.5, 0.6},
		{"unmatched hate label dampened", classifier.HateMapping(), "normal", 0.8, 0.24},
		{"negative sentiment amplified", classifier.SentimentMapping(), "negative", 0.9, 1.0},
		{"positive sentiment dampened", classifier.SentimentMapping(), "positive", 0.9, 0.27},
		{"neutral sentiment halved", classifier.SentimentMapping(), "neutral", 0.8, 0.4},
		{"amplified score clamped", classifier.HateMapping(), "hate", 0.95, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mapping.Apply(tt.label, tt.score)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Apply(%q, %v) = %v, want %v", tt.label, tt.score, got, tt.want)
			}
		})
	}
}

func TestTextClassScore(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[{"label":"toxic","score":0.92},{"label":"neutral","score":0.08}]]`))
	}))
	defer ts.Close()

	src, err := classifier.NewTextClassSource(classifier.Config{
		Protocol: "textclass",
		Endpoint: ts.URL,
		Model:    "toxic-test",
		Mapping:  classifier.ToxicityMapping(),
	})
	if err != nil {
		t.Fatalf("NewTextClassSource() error: %v", err)
	}

	sig, err := src.Score(context.Background(), "you utter fool", "en")
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if sig.Score != 0.92 {
		t.Errorf("Score = %v, want 0.92", sig.Score)
	}
	if sig.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want 0.92", sig.Confidence)
	}
	if src.Kind() != risk.KindModel {
		t.Errorf("Kind = %s, want model", src.Kind())
	}
}

func TestTextClassFlatResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"label":"negative","score":0.75}]`))
	}))
	defer ts.Close()

	src, _ := classifier.NewTextClassSource(classifier.Config{
		Endpoint: ts.URL,
		Mapping:  classifier.SentimentMapping(),
	})

	sig, err := src.Score(context.Background(), "this is awful", "en")
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if diff := sig.Score - 0.9; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Score = %v, want 0.9", sig.Score)
	}
}

func TestTextClassRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"label":"toxic","score":0.8}]`))
	}))
	defer ts.Close()

	src, _ := classifier.NewTextClassSource(classifier.Config{
		Endpoint:   ts.URL,
		Mapping:    classifier.ToxicityMapping(),
		MaxRetries: 2,
	})

	sig, err := src.Score(context.Background(), "text", "en")
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if sig.Score != 0.8 {
		t.Errorf("Score = %v, want 0.8", sig.Score)
	}
	if calls.Load() != 2 {
		t.Errorf("endpoint called %d times, want 2", calls.Load())
	}
}

func TestTextClassClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad input", http.StatusBadRequest)
	}))
	defer ts.Close()

	src, _ := classifier.NewTextClassSource(classifier.Config{
		Endpoint:   ts.URL,
		MaxRetries: 3,
	})

	if _, err := src.Score(context.Background(), "text", "en"); err == nil {
		t.Fatal("expected an error for a 400 response")
	}
	if calls.Load() != 1 {
		t.Errorf("endpoint called %d times, want 1 (no retries on 4xx)", calls.Load())
	}
}

func TestTextClassBadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer ts.Close()

	src, _ := classifier.NewTextClassSource(classifier.Config{Endpoint: ts.URL})

	if _, err := src.Score(context.Background(), "text", "en"); err == nil {
		t.Fatal("expected an error for an undecodable response")
	}
}

func TestTextClassUnreachableEndpoint(t *testing.T) {
	src, _ := classifier.NewTextClassSource(classifier.Config{
		Endpoint:   "http://127.0.0.1:1",
		Timeout:    500 * time.Millisecond,
		MaxRetries: 1,
	})

	if _, err := src.Score(context.Background(), "text", "en"); err == nil {
		t.Fatal("expected an error for an unreachable endpoint")
	}
	if src.Available(context.Background()) {
		t.Error("Available() = true for an unreachable endpoint")
	}
}

func TestTruncateCapsInput(t *testing.T) {
	long := strings.Repeat("字", classifier.MaxInputChars+100)
	got := classifier.Truncate(long)
	if n := len([]rune(got)); n != classifier.MaxInputChars {
		t.Errorf("Truncate() kept %d runes, want %d", n, classifier.MaxInputChars)
	}

	short := "short text"
	if classifier.Truncate(short) != short {
		t.Error("Truncate() modified text under the cap")
	}
}

func TestJudgeScore(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"response":"{\"score\":0.65,\"confidence\":0.8}"}`))
	}))
	defer ts.Close()

	src, err := classifier.NewJudgeSource(classifier.Config{
		Protocol:  "llmjudge",
		Endpoint:  ts.URL,
		Model:     "judge-test",
		Dimension: risk.Toxicity,
	})
	if err != nil {
		t.Fatalf("NewJudgeSource() error: %v", err)
	}

	sig, err := src.Score(context.Background(), "you fool", "en")
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if sig.Score != 0.65 {
		t.Errorf("Score = %v, want 0.65", sig.Score)
	}
	if sig.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", sig.Confidence)
	}
}

func TestJudgeBadVerdict(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"I cannot answer in JSON, sorry"}`))
	}))
	defer ts.Close()

	src, _ := classifier.NewJudgeSource(classifier.Config{
		Endpoint:  ts.URL,
		Dimension: risk.Toxicity,
	})

	if _, err := src.Score(context.Background(), "text", "en"); err == nil {
		t.Fatal("expected an error for an unparseable verdict")
	}
}

func TestJudgeRequiresDimension(t *testing.T) {
	if _, err := classifier.NewJudgeSource(classifier.Config{Endpoint: "http://localhost:11434"}); err == nil {
		t.Fatal("expected an error for a missing dimension")
	}
}

func TestFactoryRegistry(t *testing.T) {
	src, err := classifier.New(classifier.Config{
		Protocol: "textclass",
		Endpoint: "http://localhost:9999",
		Model:    "m",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if src.Name() != "textclass:m" {
		t.Errorf("Name = %s, want textclass:m", src.Name())
	}

	if _, err := classifier.New(classifier.Config{Protocol: "grpc", Endpoint: "x"}); err == nil {
		t.Error("expected an error for an unknown protocol")
	}

	if _, err := classifier.New(classifier.Config{Protocol: "textclass"}); err == nil {
		t.Error("expected an error for a missing endpoint")
	}
}
