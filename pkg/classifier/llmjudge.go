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

// JudgeSource asks a local LLM endpoint (Ollama-style /api/generate) to
// rate one dimension of the text and to answer in JSON. It is the
// secondary model tier: slower and noisier than a dedicated classifier,
// but it covers dimensions no dedicated model is deployed for.
type JudgeSource struct {
	config     Config
	dimension  risk.Dimension
	httpClient *http.Client
}

// NewJudgeSource creates an LLM-judge source for the dimension named in
// the config.
func NewJudgeSource(cfg Config) (*JudgeSource, error) {
	cfg = cfg.withDefaults()
	if _, ok := dimensionPrompts[cfg.Dimension]; !ok {
		return nil, fmt.Errorf("llmjudge requires a known dimension, got %q", cfg.Dimension)
	}
	return &JudgeSource{
		config:    cfg,
		dimension: cfg.Dimension,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Name returns the configured tier name.
func (s *JudgeSource) Name() string {
	return s.config.Name
}

// Kind reports that this source is model-backed.
func (s *JudgeSource) Kind() risk.SourceKind {
	return risk.KindModel
}

// dimensionPrompts describe each axis to the judge in plain terms.
var dimensionPrompts = map[risk.Dimension]string{
	risk.Toxicity:           "how insulting, aggressive or abusive the text is",
	risk.HateTargeting:      "how much the text expresses hate toward or targets a group of people",
	risk.EmotionalIntensity: "how emotionally charged and intense the text is",
	risk.PoliticalRelevance: "how much the text concerns politics, elections or government",
}

// Score prompts the judge for a verdict and clamps the parsed values.
func (s *JudgeSource) Score(ctx context.Context, text, language string) (risk.Signal, error) {
	prompt := fmt.Sprintf(`Rate %s on a scale from 0.0 to 1.0. Respond with JSON only.

Text (language %q):
%s

Respond with this exact JSON format:
{"score": 0.0-1.0, "confidence": 0.0-1.0}`,
		dimensionPrompts[s.dimension], language, Truncate(text))

	var response string

	backoff := retry.NewFibonacci(200 * time.Millisecond)
	err := retry.Do(ctx, retry.WithMaxRetries(s.config.MaxRetries, backoff), func(ctx context.Context) error {
		out, err := s.generate(ctx, prompt)
		if err != nil {
			return err
		}
		response = out
		return nil
	})
	if err != nil {
		return risk.Signal{}, err
	}

	var verdict struct {
		Score      float64 `json:"score"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(response), &verdict); err != nil {
		return risk.Signal{}, fmt.Errorf("failed to parse judge response: %w", err)
	}

	confidence := risk.Clamp01(verdict.Confidence)
	if confidence == 0 {
		confidence = DefaultModelConfidence
	}

	return risk.Signal{
		Score:      risk.Clamp01(verdict.Score),
		Confidence: confidence,
	}, nil
}

func (s *JudgeSource) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  s.config.Model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.Endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", retry.RetryableError(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", retry.RetryableError(fmt.Errorf("judge returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("judge returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var judgeResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&judgeResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return judgeResp.Response, nil
}

func init() {
	RegisterProtocol("llmjudge", func(cfg Config) (signal.Source, error) {
		return NewJudgeSource(cfg)
	})
}

// Available checks whether the judge endpoint is running.
func (s *JudgeSource) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", s.config.Endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
