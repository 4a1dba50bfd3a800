package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "report_url: https://example.com/report\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.TotalPages != 11 {
		t.Errorf("TotalPages = %d, want 11", cfg.TotalPages)
	}
	if len(cfg.Pages) != 11 || cfg.Pages[0] != 1 || cfg.Pages[10] != 11 {
		t.Errorf("Pages = %v, want 1..11", cfg.Pages)
	}
	if cfg.OutputDir != "data" {
		t.Errorf("OutputDir = %q, want data", cfg.OutputDir)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.Waits.SettleMs != 2000 || cfg.Waits.InitialLoadMs != 5000 {
		t.Errorf("wait defaults not applied: %+v", cfg.Waits)
	}
	if cfg.Years.Current != "2025" || cfg.Years.Next != "2026" {
		t.Errorf("year defaults not applied: %+v", cfg.Years)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, strings.TrimSpace(`
report_url: https://example.com/report
total_pages: 3
pages: [2, 3]
max_retries: 5
years:
  current: "2026"
  next: "2027"
`))

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.TotalPages != 3 || len(cfg.Pages) != 2 || cfg.MaxRetries != 5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Years.Current != "2026" || cfg.Years.Next != "2027" {
		t.Errorf("years = %+v", cfg.Years)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing url", "total_pages: 3\n"},
		{"page out of range", "report_url: https://example.com\ntotal_pages: 3\npages: [4]\n"},
		{"negative retries", "report_url: https://example.com\nmax_retries: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("LoadConfig accepted invalid config %q", tt.name)
			}
		})
	}
}
