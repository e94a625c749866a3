package aggregator

import "github.com/kurihiro0119/github-activity-report/internal/domain"

// AggregateBotActivity groups items by repository and author, in order of
// first appearance
func AggregateBotActivity(items []domain.WorkItem) []domain.BotActivity {
	type key struct{ repo, bot string }
	index := make(map[key]int)
	var activity []domain.BotActivity

	for _, item := range items {
		if item.Repository == "" {
			continue
		}
		k := key{item.Repository, item.AuthorOrUnknown()}
		i, ok := index[k]
		if !ok {
			i = len(activity)
			index[k] = i
			activity = append(activity, domain.BotActivity{Repo: k.repo, Bot: k.bot})
		}
		activity[i].Count++
		activity[i].Items = append(activity[i].Items, item)
	}

	return activity
}

// UniquePRAuthors returns the authors of pull requests in items, once each,
// in order of first appearance
func UniquePRAuthors(items []domain.WorkItem) []string {
	seen := make(map[string]bool)
	var authors []string
	for _, item := range items {
		if !item.IsPullRequest() || item.Author == "" || seen[item.Author] {
			continue
		}
		seen[item.Author] = true
		authors = append(authors, item.Author)
	}
	return authors
}

// SplitBots partitions items into human-authored and bot-authored items
func SplitBots(items []domain.WorkItem, isBot func(string) bool) (humans, bots []domain.WorkItem) {
	for _, item := range items {
		if isBot(item.Author) {
			bots = append(bots, item)
		} else {
			humans = append(humans, item)
		}
	}
	return humans, bots
}
