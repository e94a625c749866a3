package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-activity-report/internal/collector"
	"github.com/kurihiro0119/github-activity-report/internal/domain"
	"github.com/kurihiro0119/github-activity-report/internal/promotion"
	"github.com/kurihiro0119/github-activity-report/internal/storage/jsonfile"
)

var boardStatus string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show report inputs",
	Long:  `Display the data a report is built from without writing a report.`,
}

var showWindowCmd = &cobra.Command{
	Use:   "window",
	Short: "Show the report window",
	Long:  `Display the UTC month a report would cover.`,
	Args:  cobra.NoArgs,
	RunE:  runShowWindow,
}

var showHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the contributor history",
	Long:  `Display every contributor recorded in the contributor history file.`,
	Args:  cobra.NoArgs,
	RunE:  runShowHistory,
}

var showBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the project board",
	Long:  `Display the items of the configured GitHub project board and their status.`,
	Args:  cobra.NoArgs,
	RunE:  runShowBoard,
}

var showPromotionsCmd = &cobra.Command{
	Use:   "promotions",
	Short: "Show Homebrew tap additions",
	Long:  `Display the packages added to the production and experimental taps in the report window.`,
	Args:  cobra.NoArgs,
	RunE:  runShowPromotions,
}

func init() {
	showBoardCmd.Flags().StringVar(&boardStatus, "status", "", "only show items with this status")
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

func runShowWindow(cmd *cobra.Command, args []string) error {
	window, err := reportWindow()
	if err != nil {
		return err
	}

	fmt.Printf("\nReport Window: %s\n\n", window.MonthYear())

	table := newTable([]string{"Field", "Value"})
	table.Append([]string{"Start", window.Start.Format(time.RFC3339)})
	table.Append([]string{"End", window.End.Format("2006-01-02T15:04:05.000Z07:00")})
	table.Append([]string{"Report file", window.FileDate() + "-report.mdx"})
	table.Render()

	return nil
}

func runShowHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	history, err := jsonfile.NewHistoryStore(cfg.HistoryPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load contributor history: %w", err)
	}

	fmt.Printf("\nContributor History: %s\n", cfg.HistoryPath)
	if history.LastUpdated != "" {
		fmt.Printf("Last Updated: %s\n", history.LastUpdated)
	}
	fmt.Println()

	table := newTable([]string{"#", "Contributor"})
	for i, name := range history.Contributors {
		table.Append([]string{fmt.Sprintf("%d", i+1), name})
	}
	table.Render()

	return nil
}

func runShowBoard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	coll, err := newCollector(cfg)
	if err != nil {
		return err
	}

	items, err := coll.FetchProjectItems(context.Background(), cfg.ProjectOrg, cfg.ProjectNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch project board: %w", err)
	}
	if boardStatus != "" {
		items = collector.FilterByStatus(items, boardStatus)
	}

	fmt.Printf("\nProject Board: %s #%d\n", cfg.ProjectOrg, cfg.ProjectNumber)
	fmt.Printf("Items: %d\n\n", len(items))

	table := newTable([]string{"Status", "Type", "Repository", "Number", "Title", "Labels"})
	for _, item := range items {
		status := collector.StatusValue(item)
		if status == "" {
			status = "-"
		}
		number := "-"
		if item.Item.Number > 0 {
			number = fmt.Sprintf("#%d", item.Item.Number)
		}
		table.Append([]string{
			status,
			item.Item.DisplayType(),
			item.Item.Repository,
			number,
			item.Item.Title,
			strings.Join(item.Item.LabelNames(), ", "),
		})
	}
	table.Render()

	return nil
}

func runShowPromotions(cmd *cobra.Command, args []string) error {
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

	ctx := context.Background()
	detector := promotion.NewDetector(coll, cfg.ProductionTap, cfg.ExperimentalTap)

	production, err := detector.FetchTapPromotions(ctx, window)
	if err != nil {
		return fmt.Errorf("failed to fetch tap promotions: %w", err)
	}
	experimental, err := detector.FetchExperimentalAdditions(ctx, window)
	if err != nil {
		return fmt.Errorf("failed to fetch experimental additions: %w", err)
	}

	fmt.Printf("\nTap Additions: %s\n\n", window.MonthYear())

	table := newTable([]string{"Tap", "Package", "PR", "Merged", "Description"})
	appendRows := func(tap string, promotions []domain.TapPromotion) {
		for _, p := range promotions {
			table.Append([]string{
				tap,
				p.PackageName,
				fmt.Sprintf("#%d", p.PRNumber),
				p.MergedAt.Format("2006-01-02"),
				p.DescriptionOr("-"),
			})
		}
	}
	appendRows(cfg.ProductionTap, production)
	appendRows(cfg.ExperimentalTap, experimental)
	table.Render()

	return nil
}
