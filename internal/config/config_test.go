package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GH_TOKEN", "gh-token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.GitHubToken != "gh-token" {
		t.Fatalf("GitHubToken = %q, want GH_TOKEN fallback", cfg.GitHubToken)
	}
	if cfg.PlannedRepo != "projectbluefin/common" {
		t.Fatalf("PlannedRepo = %q", cfg.PlannedRepo)
	}
	if !reflect.DeepEqual(cfg.MonitoredRepos, DefaultMonitoredRepos) {
		t.Fatalf("MonitoredRepos = %v", cfg.MonitoredRepos)
	}
	if cfg.HistoryPath != "static/data/contributors-history.json" {
		t.Fatalf("HistoryPath = %q", cfg.HistoryPath)
	}
	if cfg.RequestDelay != 250*time.Millisecond {
		t.Fatalf("RequestDelay = %s", cfg.RequestDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestLoadPrefersGitHubToken(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GITHUB_TOKEN", "primary")
	t.Setenv("GH_TOKEN", "secondary")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.GitHubToken != "primary" {
		t.Fatalf("GitHubToken = %q, want primary", cfg.GitHubToken)
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GITHUB_TOKEN", "token")
	t.Setenv("REPORT_OUTPUT_DIR", "out")

	path := filepath.Join(t.TempDir(), "report.yaml")
	content := []byte("planned_repo: acme/planned\nmonitored_repos:\n  - acme/one\n  - acme/two\ntop_voices_count: 3\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.PlannedRepo != "acme/planned" {
		t.Fatalf("PlannedRepo = %q", cfg.PlannedRepo)
	}
	if !reflect.DeepEqual(cfg.MonitoredRepos, []string{"acme/one", "acme/two"}) {
		t.Fatalf("MonitoredRepos = %v", cfg.MonitoredRepos)
	}
	if cfg.TopVoicesCount != 3 {
		t.Fatalf("TopVoicesCount = %d", cfg.TopVoicesCount)
	}
	if cfg.OutputDir != "out" {
		t.Fatalf("OutputDir = %q, want env override", cfg.OutputDir)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolateEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("Load() expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		GitHubToken:    "token",
		PlannedRepo:    "projectbluefin/common",
		MonitoredRepos: []string{"ublue-os/bluefin"},
		BuildWorkflows: []string{"ublue-os/bluefin:build.yml"},
		OutputDir:      "reports",
		TopVoicesCount: 10,
	}

	testCases := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing_token", mutate: func(c *Config) { c.GitHubToken = "" }, wantField: "GITHUB_TOKEN"},
		{name: "bad_planned_repo", mutate: func(c *Config) { c.PlannedRepo = "common" }, wantField: "planned_repo"},
		{name: "bad_monitored_repo", mutate: func(c *Config) { c.MonitoredRepos = []string{"a/b/c"} }, wantField: "monitored_repos"},
		{name: "bad_workflow", mutate: func(c *Config) { c.BuildWorkflows = []string{"ublue-os/bluefin"} }, wantField: "build_workflows"},
		{name: "zero_top_voices", mutate: func(c *Config) { c.TopVoicesCount = 0 }, wantField: "top_voices_count"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			cfg.MonitoredRepos = append([]string(nil), valid.MonitoredRepos...)
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tc.wantField {
				t.Fatalf("Field = %q, want %q", cfgErr.Field, tc.wantField)
			}
		})
	}
}

func TestSplitWorkflow(t *testing.T) {
	t.Parallel()

	owner, name, file, err := SplitWorkflow("ublue-os/bluefin:build-image-stable.yml")
	if err != nil {
		t.Fatalf("SplitWorkflow() unexpected error: %v", err)
	}
	if owner != "ublue-os" || name != "bluefin" || file != "build-image-stable.yml" {
		t.Fatalf("SplitWorkflow() = %q %q %q", owner, name, file)
	}
}
