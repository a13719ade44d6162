// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for lorestate configuration.
	DefaultConfigDir = ".lorestate"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatabaseFile is the default sqlite file name inside the config dir.
	DefaultDatabaseFile = "world.db"
)

// Extraction backends.
const (
	BackendLexicon = "lexicon"
	BackendOpenAI  = "openai"
	BackendNone    = "none"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	SQLite     SQLiteConfig     `yaml:"sqlite,omitempty"`
	Matching   MatchingConfig   `yaml:"matching,omitempty"`
	Extraction ExtractionConfig `yaml:"extraction,omitempty"`
	LLM        LLMConfig        `yaml:"llm,omitempty"`
	Log        LogConfig        `yaml:"log,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite world store.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database. Relative paths are
	// resolved against the project directory.
	Path string `yaml:"path,omitempty" env:"LORE_SQLITE_PATH"`
}

// MatchingConfig tunes entity resolution.
type MatchingConfig struct {
	// Threshold is the minimum fuzzy similarity for a match, in (0,1].
	Threshold float64 `yaml:"threshold,omitempty" env:"LORE_MATCH_THRESHOLD"`
	// GenericTerms replaces the built-in deny-list when non-empty.
	GenericTerms []string `yaml:"generic_terms,omitempty" env:"LORE_GENERIC_TERMS" envSeparator:","`
}

// ExtractionConfig selects the primary extraction backend.
type ExtractionConfig struct {
	Backend string        `yaml:"backend,omitempty" env:"LORE_EXTRACTION_BACKEND"`
	Timeout time.Duration `yaml:"timeout,omitempty" env:"LORE_EXTRACTION_TIMEOUT"`
}

// LLMConfig holds configuration for the LLM tagger backend.
type LLMConfig struct {
	Model   string `yaml:"model,omitempty" env:"LORE_LLM_MODEL"`
	APIKey  string `yaml:"api_key,omitempty" env:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url,omitempty" env:"LORE_LLM_BASE_URL"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level,omitempty" env:"LORE_LOG_LEVEL"`
	Development bool   `yaml:"development,omitempty" env:"LORE_LOG_DEVELOPMENT"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		SQLite: SQLiteConfig{
			Path: filepath.Join(DefaultConfigDir, DefaultDatabaseFile),
		},
		Matching: MatchingConfig{
			Threshold: 0.85,
		},
		Extraction: ExtractionConfig{
			Backend: BackendLexicon,
			Timeout: 2 * time.Second,
		},
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the .lorestate directory in the given path,
// applies environment overrides and validates the result.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'lorestate init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.SQLite.Path) && cfg.SQLite.Path != ":memory:" {
		cfg.SQLite.Path = filepath.Join(basePath, cfg.SQLite.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. Unset variables
// leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parsing env: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the core cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SQLite.Path) == "" {
		errs = append(errs, errors.New("sqlite.path is required"))
	}
	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 1 {
		errs = append(errs, fmt.Errorf("matching.threshold must be in (0,1], got %v", c.Matching.Threshold))
	}
	switch c.Extraction.Backend {
	case BackendLexicon, BackendOpenAI, BackendNone:
	default:
		errs = append(errs, fmt.Errorf("extraction.backend must be one of %s, %s, %s; got %q",
			BackendLexicon, BackendOpenAI, BackendNone, c.Extraction.Backend))
	}
	if c.Extraction.Timeout < 0 {
		errs = append(errs, fmt.Errorf("extraction.timeout must not be negative, got %s", c.Extraction.Timeout))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the path to the .lorestate config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if a lorestate config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
