package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-activity-report/internal/collector"
	"github.com/kurihiro0119/github-activity-report/internal/config"
	"github.com/kurihiro0119/github-activity-report/internal/domain"
	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
	"github.com/kurihiro0119/github-activity-report/internal/logging"
	"github.com/kurihiro0119/github-activity-report/internal/pipeline"
	"github.com/kurihiro0119/github-activity-report/internal/storage/jsonfile"
)

const annotationFile = "cmd/generate-report/main.go"

var (
	cfgFile     string
	month       string
	outputDir   string
	historyFile string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "generate-report",
	Short: "Generate the monthly activity report",
	Long: `Generate a Markdown report of the work completed in a calendar month.

Merged pull requests are collected from the planned repository and every
monitored repository, grouped by category and enriched with contributor,
community engagement, build health and Homebrew tap promotion data.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.github-report.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&month, "month", "", "report month (YYYY-MM), defaults to the previous month")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory the report is written to")
	rootCmd.PersistentFlags().StringVar(&historyFile, "history-file", "", "contributor history JSON file")

	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showWindowCmd)
	showCmd.AddCommand(showHistoryCmd)
	showCmd.AddCommand(showBoardCmd)
	showCmd.AddCommand(showPromotionsCmd)
}

func main() {
	annotator := logging.NewAnnotator()
	if err := rootCmd.Execute(); err != nil {
		logging.Log.Errorf("Fatal error: %v", err)
		annotator.Error(annotationFile, err.Error())
		fmt.Fprintf(os.Stderr, "Tip: %s\n", apperrors.Tip(err))
		os.Exit(1)
	}
}

// loadConfig reads configuration and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if historyFile != "" {
		cfg.HistoryPath = historyFile
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := logging.SetLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateConfig checks the settings needed to talk to GitHub. A missing
// token is reported as a configuration error.
func validateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Field == "GITHUB_TOKEN" {
			return apperrors.NewConfigurationError(cfgErr.Message, err)
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func newCollector(cfg *config.Config) (collector.Collector, error) {
	coll, err := collector.NewGitHubCollector(collector.Options{
		Token:        cfg.GitHubToken,
		RequestDelay: cfg.RequestDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return coll, nil
}

func reportWindow() (domain.ReportWindow, error) {
	window, err := domain.CalculateReportWindow(time.Now(), month)
	if err != nil {
		return domain.ReportWindow{}, fmt.Errorf("invalid --month: %w", err)
	}
	return window, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	window, err := reportWindow()
	if err != nil {
		return err
	}

	coll, err := newCollector(cfg)
	if err != nil {
		return err
	}

	generator := pipeline.NewGenerator(cfg, coll, jsonfile.NewHistoryStore(cfg.HistoryPath), logging.NewAnnotator())
	run, err := generator.Run(context.Background(), window)
	if err != nil {
		return err
	}

	fmt.Printf("Report written to %s (%s)\n", run.OutputPath, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	return nil
}
