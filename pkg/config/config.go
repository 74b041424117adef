// Package config handles risk analyzer configuration loading and
// management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/classifier"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
)

const (
	// DefaultConfigDir is the default configuration directory name.
	DefaultConfigDir = ".riskanalyzer"
	// DefaultConfigFile is the default configuration file name.
	DefaultConfigFile = "config.yaml"
)

// Config holds the analyzer service configuration.
type Config struct {
	// Server settings
	Server ServerConfig `yaml:"server"`

	// Scoring settings: dimension weights and level thresholds.
	Scoring ScoringConfig `yaml:"scoring"`

	// Classifiers lists, per dimension, the model tiers to try before
	// the rule fallback, in fallback order. An absent or empty list
	// means the dimension runs rule-only.
	Classifiers map[risk.Dimension][]classifier.Config `yaml:"classifiers"`

	// Language settings
	Language LanguageConfig `yaml:"language"`

	// Lexicons settings
	Lexicons LexiconsConfig `yaml:"lexicons"`

	// Batch settings
	Batch BatchConfig `yaml:"batch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ScoringConfig holds the aggregation constants. Weights and
// thresholds are configuration, never derived at runtime; Validate
// keeps their invariants.
type ScoringConfig struct {
	Weights    risk.Weights    `yaml:"weights"`
	Thresholds risk.Thresholds `yaml:"thresholds"`
}

// LanguageConfig holds language identification settings.
type LanguageConfig struct {
	// Statistical toggles the statistical detection tier. The script
	// and stopword tiers always run.
	Statistical bool `yaml:"statistical"`
}

// LexiconsConfig holds rule lexicon settings.
type LexiconsConfig struct {
	// OverrideDir layers operator packs over the embedded ones.
	OverrideDir string `yaml:"override_dir"`
	// Watch hot-reloads the override directory while running.
	Watch bool `yaml:"watch"`
}

// BatchConfig holds batch analysis settings.
type BatchConfig struct {
	// Workers bounds parallel batch items. 1 means sequential.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 7474,
		},
		Scoring: ScoringConfig{
			Weights:    risk.DefaultWeights(),
			Thresholds: risk.DefaultThresholds(),
		},
		Language: LanguageConfig{
			Statistical: true,
		},
		Batch: BatchConfig{
			Workers: 1,
		},
	}
}

// Load loads the configuration from the default location
// (~/.riskanalyzer/config.yaml). A missing file yields the defaults.
func Load() (*Config, error) {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path. A missing file
// yields the defaults; a present file is merged over them.
func LoadFrom(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	expandedPath, err := ExpandPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	if _, err := os.Stat(expandedPath); err == nil {
		data, err := os.ReadFile(expandedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if cfg.Lexicons.OverrideDir != "" {
		cfg.Lexicons.OverrideDir, err = ExpandPath(cfg.Lexicons.OverrideDir)
		if err != nil {
			return nil, fmt.Errorf("failed to expand lexicon override dir: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid server port: %d (must be 0-65535)", c.Server.Port))
	}

	if err := c.Scoring.Weights.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Scoring.Thresholds.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	for dim, tiers := range c.Classifiers {
		if _, err := risk.ParseDimension(string(dim)); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		for i, tier := range tiers {
			if tier.Protocol == "" {
				errs = append(errs, fmt.Sprintf("classifier %d for %s has no protocol", i, dim))
			}
			if tier.Endpoint == "" {
				errs = append(errs, fmt.Sprintf("classifier %d for %s has no endpoint", i, dim))
			}
		}
	}

	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Sprintf("batch workers must be at least 1, got %d", c.Batch.Workers))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Address returns the server listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SaveTo writes the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	expandedPath, err := ExpandPath(path)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(expandedPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Content risk analyzer configuration\n\n")
	data = append(header, data...)

	if err := os.WriteFile(expandedPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile), nil
}

// ExpandPath expands ~ to the user's home directory and environment variables.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(homeDir, path[2:])
	} else if path == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = homeDir
	}

	return os.ExpandEnv(path), nil
}
