package report

import (
	"fmt"
	"maps"
	"strings"

	"github.com/kurihiro0119/github-activity-report/internal/classifier"
	"github.com/kurihiro0119/github-activity-report/internal/domain"
)

// urlSet records item URLs already listed in the document
type urlSet map[string]struct{}

func (s urlSet) has(url string) bool {
	_, ok := s[url]
	return ok
}

const chillOps = "> Status: _ChillOps_"

var titleEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`, `<`, `\<`, `{`, `\{`, `}`, `\}`)

// itemList formats items not yet shown and returns the updated set
func itemList(items []domain.WorkItem, shown urlSet) (string, urlSet) {
	shown = maps.Clone(shown)
	var lines []string
	for _, item := range items {
		if shown.has(item.URL) {
			continue
		}
		shown[item.URL] = struct{}{}
		lines = append(lines, fmt.Sprintf("- [#%d %s](%s) by @\u200B%s", item.Number, titleEscaper.Replace(item.Title), item.URL, item.AuthorOrUnknown()))
	}
	return strings.Join(lines, "\n"), shown
}

func unshownInCategory(items []domain.WorkItem, lc classifier.LabelCategory, shown urlSet) []domain.WorkItem {
	var out []domain.WorkItem
	for _, item := range items {
		if !shown.has(item.URL) && classifier.InCategory(item, lc) {
			out = append(out, item)
		}
	}
	return out
}

// categorySection renders one category with its badges and planned and
// opportunistic subsections
func categorySection(planned, opportunistic []domain.WorkItem, lc classifier.LabelCategory, shown urlSet) (string, urlSet) {
	header := fmt.Sprintf("### %s\n\n%s\n\n", lc.Category, classifier.Badges(lc.Labels))

	var parts []string
	var list string

	list, shown = itemList(unshownInCategory(planned, lc, shown), shown)
	if list != "" {
		parts = append(parts, "#### 📋 Planned Work\n\n"+list)
	}

	list, shown = itemList(unshownInCategory(opportunistic, lc, shown), shown)
	if list != "" {
		parts = append(parts, "#### ⚡ Opportunistic Work\n\n"+list)
	}

	if len(parts) == 0 {
		return header + chillOps, shown
	}
	return header + strings.Join(parts, "\n\n"), shown
}

// otherSection lists items no category claimed
func otherSection(items []domain.WorkItem, shown urlSet) (string, urlSet) {
	list, shown := itemList(items, shown)
	if list == "" {
		return "", shown
	}
	return "## 📋 Other\n\n" + list, shown
}

func shortRepo(repo string) string {
	if _, name, ok := strings.Cut(repo, "/"); ok {
		return name
	}
	return repo
}

// botActivitySection renders the bot summary table and a collapsible list
// of bot pull requests, or nothing when there was no bot activity
func botActivitySection(activity []domain.BotActivity, shown urlSet) (string, urlSet) {
	if len(activity) == 0 {
		return "", shown
	}

	rows := make([][]string, 0, len(activity))
	for _, a := range activity {
		rows = append(rows, []string{shortRepo(a.Repo), a.Bot, fmt.Sprint(a.Count)})
	}

	shown = maps.Clone(shown)
	var lines []string
	for _, a := range activity {
		for _, item := range a.Items {
			if shown.has(item.URL) {
				continue
			}
			shown[item.URL] = struct{}{}
			lines = append(lines, fmt.Sprintf("- [#%d %s](%s) in %s", item.Number, titleEscaper.Replace(item.Title), item.URL, item.Repository))
		}
	}

	var b strings.Builder
	b.WriteString("## 🤖 Bot Activity\n\n")
	b.WriteString(markdownTable([]string{"Repository", "Bot", "PRs"}, rows))
	b.WriteString("\n<details>\n<summary>View bot activity details</summary>\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n</details>")
	return b.String(), shown
}

// buildHealthSection renders per-workflow run outcomes
func buildHealthSection(metrics domain.BuildMetrics) string {
	rows := make([][]string, 0, len(metrics.Workflows))
	for _, wf := range metrics.Workflows {
		rows = append(rows, []string{
			wf.Name,
			fmt.Sprint(wf.Total),
			fmt.Sprint(wf.Succeeded),
			fmt.Sprint(wf.Failed),
			fmt.Sprint(wf.Cancelled),
			fmt.Sprintf("%.1f%%", wf.SuccessRate()),
		})
	}
	return "## 🏗️ Build Health\n\n" + markdownTable([]string{"Workflow", "Runs", "Succeeded", "Failed", "Cancelled", "Success Rate"}, rows)
}

// tapPromotionsSection renders packages promoted to the production tap
func tapPromotionsSection(promotions []domain.TapPromotion, shown urlSet) (string, urlSet) {
	if len(promotions) == 0 {
		return "", shown
	}

	shown = maps.Clone(shown)
	rows := make([][]string, 0, len(promotions))
	for _, p := range promotions {
		pr := fmt.Sprintf("#%d", p.PRNumber)
		if p.PRURL != "" && !shown.has(p.PRURL) {
			pr = fmt.Sprintf("[#%d](%s)", p.PRNumber, p.PRURL)
			shown[p.PRURL] = struct{}{}
		}
		rows = append(rows, []string{
			"`" + p.PackageName + "`",
			titleEscaper.Replace(p.DescriptionOr("No description available")),
			pr,
			p.MergedAt.UTC().Format("2006-01-02"),
		})
	}
	return "## 🍺 Tap Promotions\n\n" + markdownTable([]string{"Package", "Description", "PR", "Merged"}, rows), shown
}

const cardGrid = "<div style={{ display: 'grid', gridTemplateColumns: 'repeat(2, 1fr)', gap: '1.5rem', marginBottom: '2rem' }}>"

// card renders a profile card. Distinguished contributors keep their own
// highlight; otherwise newLight selects the gold highlight.
func card(username string, newLight bool) string {
	if h := classifier.DistinguishedHighlight(username); h != classifier.HighlightNone {
		return fmt.Sprintf(`<GitHubProfileCard username="%s" highlight="%s" />`, username, h)
	}
	if newLight {
		return fmt.Sprintf(`<GitHubProfileCard username="%s" highlight={true} />`, username)
	}
	return fmt.Sprintf(`<GitHubProfileCard username="%s" />`, username)
}

func cardSection(heading, intro string, cards []string) string {
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s\n\n</div>", heading, intro, cardGrid, strings.Join(cards, "\n\n"))
}

// contributorsSection renders New Lights, Wayfinders and Top Voices. Each
// person appears in at most one of them.
func contributorsSection(contributors, newContributors []string, topVoices domain.Feature[domain.TopVoices]) string {
	listed := make(map[string]bool)
	var parts []string

	var cards []string
	for _, u := range newContributors {
		if u == "" || listed[u] {
			continue
		}
		listed[u] = true
		cards = append(cards, card(u, true))
	}
	if len(cards) > 0 {
		parts = append(parts, cardSection("## 🌟 New Lights", "Welcome to our first-time contributors!", cards))
	}

	cards = nil
	for _, u := range contributors {
		if u == "" || listed[u] {
			continue
		}
		listed[u] = true
		cards = append(cards, card(u, false))
	}
	if len(cards) > 0 {
		parts = append(parts, cardSection("## 🧭 Wayfinders", "Thank you to everyone who contributed code this period!", cards))
	}

	if topVoices.OK {
		tv := topVoices.Value
		cards = nil
		for _, v := range tv.Voices {
			if listed[v.Username] {
				continue
			}
			listed[v.Username] = true
			cards = append(cards, card(v.Username, false))
		}
		if len(cards) > 0 {
			intro := fmt.Sprintf("The most helpful voices across %d discussion comments and %d issue comments from %d participants.",
				tv.TotalDiscussions, tv.TotalIssues, tv.Participants)
			parts = append(parts, cardSection("## 🗣️ Top Voices", intro, cards))
		}
	}

	return strings.Join(parts, "\n\n")
}
