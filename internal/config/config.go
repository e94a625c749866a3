package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken  string
	RequestDelay time.Duration

	// Repositories
	PlannedRepo     string   // owner/name treated as planned work
	MonitoredRepos  []string // ordered; the planned repo is skipped when listed
	DiscussionRepo  string
	ProductionTap   string
	ExperimentalTap string
	ProjectOrg      string
	ProjectNumber   int

	// Build health, "owner/name:workflow-file"
	BuildWorkflows []string

	// Report
	OutputDir      string
	HistoryPath    string
	TopVoicesCount int
	MinTopVoices   int

	// CLI
	LogLevel string
}

// DefaultMonitoredRepos is the ordered list of repositories scanned for opportunistic work
var DefaultMonitoredRepos = []string{
	"ublue-os/bluefin",
	"ublue-os/bluefin-lts",
	"ublue-os/homebrew-tap",
	"ublue-os/homebrew-experimental-tap",
	"projectbluefin/common",
	"projectbluefin/documentation",
	"projectbluefin/branding",
	"projectbluefin/iso",
	"projectbluefin/dakota",
}

// DefaultBuildWorkflows are the image builds tracked in the build health section
var DefaultBuildWorkflows = []string{
	"ublue-os/bluefin:build-image-stable.yml",
	"ublue-os/bluefin:build-image-latest-main.yml",
	"ublue-os/bluefin-lts:build-regular.yml",
}

// Load loads the configuration from .env, an optional YAML file and
// environment variables. cfgFile may be empty.
func Load(cfgFile string) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".github-report")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("REPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{
		GitHubToken:     getToken(),
		RequestDelay:    v.GetDuration("request_delay"),
		PlannedRepo:     v.GetString("planned_repo"),
		MonitoredRepos:  v.GetStringSlice("monitored_repos"),
		DiscussionRepo:  v.GetString("discussion_repo"),
		ProductionTap:   v.GetString("production_tap"),
		ExperimentalTap: v.GetString("experimental_tap"),
		ProjectOrg:      v.GetString("project_org"),
		ProjectNumber:   v.GetInt("project_number"),
		BuildWorkflows:  v.GetStringSlice("build_workflows"),
		OutputDir:       v.GetString("output_dir"),
		HistoryPath:     v.GetString("history_path"),
		TopVoicesCount:  v.GetInt("top_voices_count"),
		MinTopVoices:    v.GetInt("min_top_voices"),
		LogLevel:        v.GetString("log_level"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("request_delay", 250*time.Millisecond)
	v.SetDefault("planned_repo", "projectbluefin/common")
	v.SetDefault("monitored_repos", DefaultMonitoredRepos)
	v.SetDefault("discussion_repo", "ublue-os/bluefin")
	v.SetDefault("production_tap", "ublue-os/homebrew-tap")
	v.SetDefault("experimental_tap", "ublue-os/homebrew-experimental-tap")
	v.SetDefault("project_org", "projectbluefin")
	v.SetDefault("project_number", 2)
	v.SetDefault("build_workflows", DefaultBuildWorkflows)
	v.SetDefault("output_dir", "reports")
	v.SetDefault("history_path", "static/data/contributors-history.json")
	v.SetDefault("top_voices_count", 10)
	v.SetDefault("min_top_voices", 5)
	v.SetDefault("log_level", "info")
}

// getToken returns GITHUB_TOKEN, falling back to GH_TOKEN
func getToken() string {
	if value := os.Getenv("GITHUB_TOKEN"); value != "" {
		return value
	}
	return os.Getenv("GH_TOKEN")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GitHubToken == "" {
		return &ConfigError{Field: "GITHUB_TOKEN", Message: "GITHUB_TOKEN or GH_TOKEN environment variable required"}
	}
	if _, _, err := SplitRepo(c.PlannedRepo); err != nil {
		return &ConfigError{Field: "planned_repo", Message: err.Error()}
	}
	for _, repo := range c.MonitoredRepos {
		if _, _, err := SplitRepo(repo); err != nil {
			return &ConfigError{Field: "monitored_repos", Message: err.Error()}
		}
	}
	for _, wf := range c.BuildWorkflows {
		if _, _, _, err := SplitWorkflow(wf); err != nil {
			return &ConfigError{Field: "build_workflows", Message: err.Error()}
		}
	}
	if c.TopVoicesCount <= 0 {
		return &ConfigError{Field: "top_voices_count", Message: "must be greater than zero"}
	}
	if c.OutputDir == "" {
		return &ConfigError{Field: "output_dir", Message: "output directory is required"}
	}
	return nil
}

// SplitRepo splits "owner/name"
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository %q must be in owner/name form", repo)
	}
	return parts[0], parts[1], nil
}

// SplitWorkflow splits "owner/name:workflow.yml"
func SplitWorkflow(spec string) (owner, name, file string, err error) {
	repo, file, ok := strings.Cut(spec, ":")
	if !ok || file == "" {
		return "", "", "", fmt.Errorf("workflow %q must be in owner/name:file form", spec)
	}
	owner, name, err = SplitRepo(repo)
	if err != nil {
		return "", "", "", err
	}
	return owner, name, file, nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
