package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/signal"
)

// TextClassSource wraps an inference endpoint that classifies text into
// labeled probabilities, like a hosted transformer pipeline. The top
// label is mapped through the configured LabelMapping.
type TextClassSource struct {
	config     Config
	httpClient *http.Client
}

// NewTextClassSource creates a text-classification source.
func NewTextClassSource(cfg Config) (*TextClassSource, error) {
	cfg = cfg.withDefaults()
	return &TextClassSource{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Name returns the configured tier name.
func (s *TextClassSource) Name() string {
	return s.config.Name
}

// Kind reports that this source is model-backed.
func (s *TextClassSource) Kind() risk.SourceKind {
	return risk.KindModel
}

// Score sends the text to the classifier and maps the top label into a
// sub-score. Transport errors and 5xx responses are retried with
// Fibonacci backoff; 4xx responses and undecodable bodies are permanent
// failures that degrade the tier.
func (s *TextClassSource) Score(ctx context.Context, text, language string) (risk.Signal, error) {
	var top labelScore

	backoff := retry.NewFibonacci(200 * time.Millisecond)
	err := retry.Do(ctx, retry.WithMaxRetries(s.config.MaxRetries, backoff), func(ctx context.Context) error {
		result, err := s.classify(ctx, Truncate(text))
		if err != nil {
			return err
		}
		top = result
		return nil
	})
	if err != nil {
		return risk.Signal{}, err
	}

	confidence := top.Score
	if confidence <= 0 {
		confidence = DefaultModelConfidence
	}

	return risk.Signal{
		Score:      s.config.Mapping.Apply(top.Label, top.Score),
		Confidence: confidence,
	}, nil
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (s *TextClassSource) classify(ctx context.Context, text string) (labelScore, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return labelScore{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return labelScore{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return labelScore{}, retry.RetryableError(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return labelScore{}, retry.RetryableError(fmt.Errorf("classifier returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return labelScore{}, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return decodeLabels(resp.Body)
}

// decodeLabels accepts both response shapes inference endpoints use:
// a flat list of label/score pairs, or that list nested once per input.
// The pair with the highest score wins.
func decodeLabels(r io.Reader) (labelScore, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return labelScore{}, fmt.Errorf("failed to read response: %w", err)
	}

	var flat []labelScore
	if err := json.Unmarshal(data, &flat); err != nil {
		var nested [][]labelScore
		if err := json.Unmarshal(data, &nested); err != nil || len(nested) == 0 {
			return labelScore{}, fmt.Errorf("failed to decode classifier response: %s", string(data))
		}
		flat = nested[0]
	}

	if len(flat) == 0 {
		return labelScore{}, fmt.Errorf("classifier returned no labels")
	}

	top := flat[0]
	for _, ls := range flat[1:] {
		if ls.Score > top.Score {
			top = ls
		}
	}
	return top, nil
}

// Available probes the endpoint for reachability.
func (s *TextClassSource) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", s.config.Endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	// Any HTTP answer means the endpoint is up; inference endpoints
	// commonly reject GET with 4xx.
	return resp.StatusCode < 500
}

func init() {
	RegisterProtocol("textclass", func(cfg Config) (signal.Source, error) {
		return NewTextClassSource(cfg)
	})
}
