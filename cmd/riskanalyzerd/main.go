package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/analyzer"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/classifier"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/config"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules/lexicons"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/server"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/storage"
)

const version = "0.1.0"

func main() {
	// Parse command line flags
	host := flag.String("host", "localhost", "Host to bind to")
	port := flag.Int("port", 7474, "Port to listen on")
	configPath := flag.String("config", "", "Path to configuration file")
	workers := flag.Int("workers", 0, "Batch worker count (overrides config when > 0)")

	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("riskanalyzerd v%s\n", version)
		os.Exit(0)
	}

	fmt.Printf("Content Risk Analyzer Daemon v%s\n", version)

	// Load configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			// Use default configuration if no config file found
			cfg = config.DefaultConfig()
		}
	}

	// Override config with command line flags
	if *host != "localhost" {
		cfg.Server.Host = *host
	}
	if *port != 7474 {
		cfg.Server.Port = *port
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}

	// Build the analyzer and its lexicon store
	a, store, err := analyzer.FromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to build analyzer: %v", err)
	}
	log.Printf("Loaded lexicons: %v", store.Names())

	// Probe the configured classifier tiers so misconfigured endpoints
	// surface at startup instead of as silent rule fallbacks
	probeClassifiers(a)

	// Watch the lexicon override directory if configured
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Lexicons.Watch && cfg.Lexicons.OverrideDir != "" {
		watcher, err := lexicons.NewWatcher(store, lexicons.DefaultWatcherConfig(cfg.Lexicons.OverrideDir))
		if err != nil {
			log.Printf("Warning: Failed to create lexicon watcher: %v", err)
		} else if err := watcher.Start(ctx); err != nil {
			log.Printf("Warning: Failed to watch %s: %v", cfg.Lexicons.OverrideDir, err)
		} else {
			log.Printf("Watching lexicon overrides in %s", cfg.Lexicons.OverrideDir)
			defer watcher.Stop()
		}
	}

	// Initialize storage
	auditStore := storage.NewMemoryStore()

	// Create server configuration
	serverConfig := server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     server.DefaultConfig().ReadTimeout,
		WriteTimeout:    server.DefaultConfig().WriteTimeout,
		ShutdownTimeout: server.DefaultConfig().ShutdownTimeout,
		MaxBatchSize:    server.DefaultConfig().MaxBatchSize,
	}

	// Create and start server
	srv := server.New(serverConfig, a, auditStore)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("Daemon running on http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Println("Press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := <-sigChan
	log.Printf("Received signal %v, shutting down...", sig)

	if err := srv.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	if err := auditStore.Close(); err != nil {
		log.Printf("Error closing storage: %v", err)
	}

	log.Println("Daemon stopped")
}

// probeClassifiers checks each classifier tier's availability once.
// Failures only log a warning: the rule fallback keeps every dimension
// serviceable.
func probeClassifiers(a *analyzer.Analyzer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, dim := range risk.Dimensions() {
		for _, src := range a.Sources(dim) {
			prober, ok := src.(classifier.Prober)
			if !ok {
				continue
			}
			if prober.Available(ctx) {
				log.Printf("Classifier %s for %s is available", src.Name(), dim)
			} else {
				log.Printf("Warning: classifier %s for %s is unreachable, will fall back", src.Name(), dim)
			}
		}
	}
}
