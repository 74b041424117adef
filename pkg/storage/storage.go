// Package storage implements in-memory audit storage for analysis
// events. Assessments themselves are never persisted; the audit log
// keeps only the scoring outcome, not the analyzed text.
package storage

import (
	"time"

	"github.com/google/uuid"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
)

// Event records one completed analysis.
type Event struct {
	ID         string    `json:"event_id"`
	Timestamp  time.Time `json:"timestamp"`
	Level      string    `json:"risk_level"`
	Score      float64   `json:"risk_score"`
	Language   string    `json:"detected_language"`
	Confidence float64   `json:"confidence"`
	TextLength int       `json:"text_length"`
	ElapsedMS  float64   `json:"elapsed_ms"`
	Degraded   []string  `json:"degraded_dimensions,omitempty"`
	Batch      bool      `json:"batch"`
}

// NewEvent builds an audit event from an assessment.
func NewEvent(a risk.Assessment, batch bool) Event {
	var degraded []string
	for _, dim := range a.DegradedDimensions() {
		degraded = append(degraded, string(dim))
	}

	return Event{
		ID:         uuid.New().String(),
		Timestamp:  time.Now(),
		Level:      string(a.RiskLevel),
		Score:      a.RiskScore,
		Language:   a.DetectedLanguage,
		Confidence: a.Confidence,
		TextLength: a.TextLength,
		ElapsedMS:  float64(a.Elapsed.Microseconds()) / 1000.0,
		Degraded:   degraded,
		Batch:      batch,
	}
}

// Store defines the interface for audit event storage.
type Store interface {
	// Record stores an event.
	Record(event Event) error

	// Query retrieves events matching the given criteria.
	Query(opts QueryOptions) ([]Event, error)

	// CountToday returns the number of events recorded today.
	CountToday() (int64, error)

	// LevelCounts returns how many events landed on each risk level.
	LevelCounts() (map[string]int64, error)

	// Close closes the storage.
	Close() error
}

// QueryOptions specifies criteria for querying events.
type QueryOptions struct {
	Limit    int
	Offset   int
	Since    *time.Time
	Until    *time.Time
	Level    string
	Language string
	MinScore float64
}
