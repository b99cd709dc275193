package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceConfig is the per-portal scraping configuration. Loaded once at
// startup and treated as immutable during a scrape cycle.
type SourceConfig struct {
	Enabled        bool   `yaml:"enabled"`
	SearchQuery    string `yaml:"search_query"`
	Location       string `yaml:"location"`
	MaxPages       int    `yaml:"max_pages"`
	RequestDelayMs int    `yaml:"request_delay_ms"`
	MaxRetries     int    `yaml:"max_retries"`
	DateFilterDays int    `yaml:"date_filter_days"`
	DeepScrape     bool   `yaml:"deep_scrape"`
	VerifyLinks    bool   `yaml:"verify_links"`
}

type sourcesFile struct {
	Sources map[string]SourceConfig `yaml:"sources"`
}

// LoadSources reads the per-source YAML config, applies defaults, and
// validates every entry. Missing file is not an error: every registered
// adapter runs with defaults.
func LoadSources(path string) (map[string]SourceConfig, error) {
	out := map[string]SourceConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	for name, sc := range f.Sources {
		sc.ApplyDefaults()
		if err := sc.Validate(); err != nil {
			return nil, fmt.Errorf("source %q: %w", name, err)
		}
		out[name] = sc
	}
	return out, nil
}

// DefaultSource is the configuration used for adapters with no YAML entry.
func DefaultSource() SourceConfig {
	sc := SourceConfig{Enabled: true, SearchQuery: "software engineer"}
	sc.ApplyDefaults()
	return sc
}

func (sc *SourceConfig) ApplyDefaults() {
	if sc.MaxPages == 0 {
		sc.MaxPages = 2
	}
	if sc.RequestDelayMs == 0 {
		sc.RequestDelayMs = 2000
	}
	if sc.MaxRetries == 0 {
		sc.MaxRetries = 3
	}
}

func (sc *SourceConfig) Validate() error {
	if sc.MaxPages < 1 {
		return fmt.Errorf("max_pages must be >= 1, got %d", sc.MaxPages)
	}
	if sc.RequestDelayMs < 0 {
		return fmt.Errorf("request_delay_ms must be >= 0, got %d", sc.RequestDelayMs)
	}
	if sc.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", sc.MaxRetries)
	}
	if sc.DateFilterDays < 0 {
		return fmt.Errorf("date_filter_days must be >= 0, got %d", sc.DateFilterDays)
	}
	return nil
}
