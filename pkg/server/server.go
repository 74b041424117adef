// Package server implements the analyzer HTTP server.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/analyzer"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/api"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/storage"
)

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// MaxBatchSize bounds one batch request.
	MaxBatchSize int
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            7474,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxBatchSize:    256,
	}
}

// Server exposes the analyzer over HTTP.
type Server struct {
	config     Config
	httpServer *http.Server
	analyzer   *analyzer.Analyzer
	store      storage.Store
	startTime  time.Time
	listener   net.Listener

	mu      sync.RWMutex
	running bool
}

// New creates a new server with the given configuration.
func New(config Config, a *analyzer.Analyzer, store storage.Store) *Server {
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = DefaultConfig().MaxBatchSize
	}
	return &Server{
		config:   config,
		analyzer: a,
		store:    store,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startTime = time.Now()
	s.mu.Unlock()

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.loggingMiddleware(mux),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	log.Printf("Server listening on http://%s", listener.Addr().String())

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	log.Println("Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the actual address the server is listening on.
// This is useful when the server was started with port 0 (random port).
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// registerRoutes registers all API routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)

	mux.HandleFunc("POST /v1/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /v1/analyze/batch", s.handleAnalyzeBatch)
	mux.HandleFunc("GET /v1/stats", s.handleGetStats)

	mux.Handle("GET /metrics", promhttp.Handler())
}

// loggingMiddleware logs all requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		log.Printf("%s %s %d %s",
			r.Method,
			r.URL.Path,
			rw.statusCode,
			time.Since(start),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleReady handles readiness check requests.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "not_ready", "Analyzer not initialized")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// handleAnalyze scores one text.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_json", "Failed to parse request body")
		return
	}

	assessment := s.analyzer.AnalyzeText(r.Context(), req.Text, req.Language)
	s.observe(assessment, false)

	api.WriteJSON(w, http.StatusOK, api.NewAnalyzeResponse(assessment))
}

// handleAnalyzeBatch scores a batch of texts, order-preserving.
func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req api.BatchAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_json", "Failed to parse request body")
		return
	}

	if len(req.Texts) > s.config.MaxBatchSize {
		api.WriteError(w, http.StatusRequestEntityTooLarge, "batch_too_large",
			fmt.Sprintf("Batch size %d exceeds limit %d", len(req.Texts), s.config.MaxBatchSize))
		return
	}

	batchSize.Observe(float64(len(req.Texts)))

	assessments := s.analyzer.AnalyzeBatch(r.Context(), req.Texts)

	resp := api.BatchAnalyzeResponse{
		Results: make([]api.AnalyzeResponse, 0, len(assessments)),
	}
	for _, assessment := range assessments {
		s.observe(assessment, true)
		resp.Results = append(resp.Results, api.NewAnalyzeResponse(assessment))
	}

	api.WriteJSON(w, http.StatusOK, resp)
}

// observe records metrics and the audit event for one assessment.
func (s *Server) observe(a risk.Assessment, batch bool) {
	analysesTotal.WithLabelValues(string(a.RiskLevel)).Inc()
	analyzeDuration.Observe(a.Elapsed.Seconds())
	for _, dim := range a.DegradedDimensions() {
		degradedSignalsTotal.WithLabelValues(string(dim)).Inc()
	}

	if s.store != nil {
		if err := s.store.Record(storage.NewEvent(a, batch)); err != nil {
			log.Printf("Failed to record audit event: %v", err)
		}
	}
}

// handleGetStats handles stats requests.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.startTime)

	var analysesToday int64
	levelCounts := map[string]int64{}
	if s.store != nil {
		analysesToday, _ = s.store.CountToday()
		levelCounts, _ = s.store.LevelCounts()
	}

	chains := make(map[string][]string)
	for dim, chain := range s.analyzer.Chains() {
		chains[string(dim)] = chain
	}

	resp := api.StatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		AnalysesToday: analysesToday,
		LevelCounts:   levelCounts,
		Chains:        chains,
	}

	api.WriteJSON(w, http.StatusOK, resp)
}
