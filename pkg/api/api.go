// Package api defines the analyzer HTTP request/response types and
// JSON helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
)

// AnalyzeRequest asks for one text to be scored. Language is optional;
// empty or "auto" means detect.
type AnalyzeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// AnalyzeResponse wraps one assessment. The assessment serializes the
// five-field scoring contract; explanations and timing ride alongside.
type AnalyzeResponse struct {
	Assessment   risk.Assessment `json:"assessment"`
	Explanations []string        `json:"explanations"`
	ElapsedMS    float64         `json:"elapsed_ms"`
}

// BatchAnalyzeRequest asks for a batch of texts to be scored.
type BatchAnalyzeRequest struct {
	Texts    []string `json:"texts"`
	Language string   `json:"language,omitempty"`
}

// BatchAnalyzeResponse carries one result per input text, in input
// order.
type BatchAnalyzeResponse struct {
	Results []AnalyzeResponse `json:"results"`
}

// StatsResponse reports service statistics.
type StatsResponse struct {
	Uptime        string              `json:"uptime"`
	AnalysesToday int64               `json:"analyses_today"`
	LevelCounts   map[string]int64    `json:"level_counts"`
	Chains        map[string][]string `json:"chains"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// NewAnalyzeResponse builds the wire wrapper for one assessment.
func NewAnalyzeResponse(a risk.Assessment) AnalyzeResponse {
	return AnalyzeResponse{
		Assessment:   a,
		Explanations: a.Explanations(),
		ElapsedMS:    float64(a.Elapsed.Microseconds()) / 1000.0,
	}
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
