// Package config reads and writes the tabsplit.yaml configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tabsplit-dev/tabsplit/internal/split"
)

// DefaultPath is where commands look for configuration by default.
const DefaultPath = "tabsplit.yaml"

// Config represents the top-level tabsplit.yaml configuration.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction"`
	Storage    StorageConfig    `yaml:"storage"`
	Split      SplitConfig      `yaml:"split"`
	Server     ServerConfig     `yaml:"server"`
}

// ExtractionConfig points at the local language model used for field
// extraction.
type ExtractionConfig struct {
	OllamaHost string `yaml:"ollama_host"`
	Model      string `yaml:"model"`
	// PromptPath overrides the embedded prompt templates when set.
	PromptPath string `yaml:"prompt_path,omitempty"`
}

// StorageConfig locates the receipt database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// SplitConfig carries allocation defaults a plan file can override.
type SplitConfig struct {
	TaxPolicy   string `yaml:"tax_policy"`
	TipPolicy   string `yaml:"tip_policy"`
	TotalSource string `yaml:"total_source"`
	// Tolerance is the allowed gap between the itemized sum and the
	// stated total before a warning is raised, e.g. "0.01".
	Tolerance string `yaml:"tolerance"`
}

// ServerConfig controls the correction-UI API server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a tabsplit.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Defaults materializes the configured allocation defaults. Empty fields
// fall back to the engine's own defaults at allocation time.
func (c SplitConfig) Defaults() (split.Config, error) {
	cfg := split.Config{
		TaxPolicy:   split.Policy(c.TaxPolicy),
		TipPolicy:   split.Policy(c.TipPolicy),
		TotalSource: split.TotalSource(c.TotalSource),
	}
	if c.Tolerance != "" {
		tol, err := decimal.NewFromString(c.Tolerance)
		if err != nil {
			return split.Config{}, fmt.Errorf("parsing tolerance: %w", err)
		}
		cfg.Tolerance = tol
	}
	return cfg, nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			OllamaHost: "http://localhost:11434",
			Model:      "llama3.2",
		},
		Storage: StorageConfig{
			DBPath: "./data/receipts.db",
		},
		Split: SplitConfig{
			TaxPolicy:   "proportional",
			TipPolicy:   "proportional",
			TotalSource: "stated-total",
			Tolerance:   "0.01",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
