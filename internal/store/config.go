package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ReportURL  string `yaml:"report_url"`
	Pages      []int  `yaml:"pages"`
	TotalPages int    `yaml:"total_pages"`
	OutputDir  string `yaml:"output_dir"`
	Headless   bool   `yaml:"headless"`

	Waits struct {
		InitialLoadMs int `yaml:"initial_load_ms"`
		SettleMs      int `yaml:"settle_ms"`
		ScrollMs      int `yaml:"scroll_ms"`
		NavSettleMs   int `yaml:"nav_settle_ms"`
		NavRecheckMs  int `yaml:"nav_recheck_ms"`
		StepTimeoutMs int `yaml:"step_timeout_ms"`
	} `yaml:"waits"`

	MaxRetries int `yaml:"max_retries"`

	// Calendar-epoch constants for year inference. The report omits years,
	// so these must be rolled forward manually as the boundary passes.
	Years struct {
		Current string `yaml:"current"`
		Next    string `yaml:"next"`
	} `yaml:"years"`

	Resolver struct {
		PriceContextExclusions []string `yaml:"price_context_exclusions"`
		BroadExclusions        []string `yaml:"broad_exclusions"`
	} `yaml:"resolver"`

	Archive struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"archive"`

	Universe struct {
		ValidateSymbols bool `yaml:"validate_symbols"`
	} `yaml:"universe"`
}

func (c *Config) Validate() error {
	if c.ReportURL == "" {
		return errors.New("report_url cannot be empty")
	}
	if c.TotalPages <= 0 {
		return fmt.Errorf("total_pages must be positive, got %d", c.TotalPages)
	}
	for _, p := range c.Pages {
		if p < 1 || p > c.TotalPages {
			return fmt.Errorf("page %d out of range 1-%d", p, c.TotalPages)
		}
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.Years.Current == "" || c.Years.Next == "" {
		return errors.New("years.current and years.next must both be set")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.TotalPages == 0 {
		c.TotalPages = 11
	}
	if len(c.Pages) == 0 {
		for p := 1; p <= c.TotalPages; p++ {
			c.Pages = append(c.Pages, p)
		}
	}
	if c.OutputDir == "" {
		c.OutputDir = "data"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.Waits.InitialLoadMs == 0 {
		c.Waits.InitialLoadMs = 5000
	}
	if c.Waits.SettleMs == 0 {
		c.Waits.SettleMs = 2000
	}
	if c.Waits.ScrollMs == 0 {
		c.Waits.ScrollMs = 300
	}
	if c.Waits.NavSettleMs == 0 {
		c.Waits.NavSettleMs = 5000
	}
	if c.Waits.NavRecheckMs == 0 {
		c.Waits.NavRecheckMs = 3000
	}
	if c.Waits.StepTimeoutMs == 0 {
		c.Waits.StepTimeoutMs = 60000
	}
	if c.Years.Current == "" {
		c.Years.Current = "2025"
	}
	if c.Years.Next == "" {
		c.Years.Next = "2026"
	}
	if c.Archive.Enabled && c.Archive.Path == "" {
		c.Archive.Path = "data/archive.db"
	}
}
