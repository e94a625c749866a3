package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/kurihiro0119/github-activity-report/internal/classifier"
	"github.com/kurihiro0119/github-activity-report/internal/domain"
)

// Data is everything a monthly report is rendered from
type Data struct {
	Window      domain.ReportWindow
	GeneratedAt time.Time

	Planned       []domain.WorkItem
	Opportunistic []domain.WorkItem

	Contributors    []string
	NewContributors []string
	BotActivity     []domain.BotActivity

	BuildMetrics  domain.Feature[domain.BuildMetrics]
	TapPromotions domain.Feature[[]domain.TapPromotion]
	TopVoices     domain.Feature[domain.TopVoices]
}

// GenerateMarkdown renders the report as MDX. Output depends only on data,
// and no item URL is listed twice.
func GenerateMarkdown(data Data) string {
	shown := urlSet{}
	var sections []string
	var s string

	sections = append(sections, frontmatter(data.Window), summary(data))

	var area, kind []string
	for _, lc := range classifier.CategoriesInGroup(classifier.GroupArea) {
		s, shown = categorySection(data.Planned, data.Opportunistic, lc, shown)
		area = append(area, s)
	}
	for _, lc := range classifier.CategoriesInGroup(classifier.GroupKind) {
		s, shown = categorySection(data.Planned, data.Opportunistic, lc, shown)
		kind = append(kind, s)
	}
	sections = append(sections,
		"# Focus Area\n\n"+strings.Join(area, "\n\n"),
		"# Work by Type\n\n"+strings.Join(kind, "\n\n"),
	)

	s, shown = otherSection(append(append([]domain.WorkItem{}, data.Planned...), data.Opportunistic...), shown)
	sections = append(sections, s)

	s, shown = botActivitySection(data.BotActivity, shown)
	sections = append(sections, s)

	if data.BuildMetrics.OK {
		sections = append(sections, buildHealthSection(data.BuildMetrics.Value))
	}

	if data.TapPromotions.OK {
		s, shown = tapPromotionsSection(data.TapPromotions.Value, shown)
		sections = append(sections, s)
	}

	sections = append(sections, contributorsSection(data.Contributors, data.NewContributors, data.TopVoices))
	sections = append(sections, footer(data.GeneratedAt))

	var out []string
	for _, section := range sections {
		if strings.TrimSpace(section) != "" {
			out = append(out, strings.TrimRight(section, "\n"))
		}
	}
	return strings.Join(out, "\n\n") + "\n"
}

func frontmatter(w domain.ReportWindow) string {
	return fmt.Sprintf(`---
title: "Monthly Report: %s"
date: %s
tags: [monthly-report, project-activity]
---

import GitHubProfileCard from '@site/src/components/GitHubProfileCard';`, w.MonthYear(), w.FileDate())
}

func summary(data Data) string {
	rows := [][]string{
		{"Month", data.Window.MonthYear()},
		{"Total items", fmt.Sprint(len(data.Planned) + len(data.Opportunistic))},
		{"Planned work", fmt.Sprint(len(data.Planned))},
		{"Opportunistic work", fmt.Sprint(len(data.Opportunistic))},
		{"Contributors", fmt.Sprintf("%d new, %d total", len(data.NewContributors), len(data.Contributors))},
		{"Bot PRs", fmt.Sprint(botItemCount(data.BotActivity))},
	}
	if data.TapPromotions.OK {
		rows = append(rows, []string{"Tap promotions", fmt.Sprint(len(data.TapPromotions.Value))})
	}
	return "# Summary\n\n" + markdownTable([]string{"Metric", "Value"}, rows)
}

func botItemCount(activity []domain.BotActivity) int {
	n := 0
	for _, a := range activity {
		n += a.Count
	}
	return n
}

func footer(generatedAt time.Time) string {
	return fmt.Sprintf(`---

*Want to see the latest OS releases? Check out the [Changelogs](/changelogs) page. For announcements and deep dives, read our [Blog](/blog).*

*This report was automatically generated from [todo.projectbluefin.io](https://todo.projectbluefin.io).*

---

*Generated on %s*  
[View Project Board](https://todo.projectbluefin.io) | [Report an Issue](https://github.com/projectbluefin/common/issues/new)`, generatedAt.UTC().Format("2006-01-02"))
}
