package aggregator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kurihiro0119/github-activity-report/internal/classifier"
	"github.com/kurihiro0119/github-activity-report/internal/domain"
	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
	"github.com/kurihiro0119/github-activity-report/internal/logging"
)

// CommentSource provides the comments engagement is counted from
type CommentSource interface {
	FetchDiscussionComments(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.Comment, error)
	FetchIssueComments(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.Comment, error)
}

func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name", repo)
	}
	return owner, name, nil
}

func statsFor(m domain.EngagementMap, user string) *domain.Engagement {
	stats, ok := m[user]
	if !ok {
		stats = &domain.Engagement{}
		m[user] = stats
	}
	return stats
}

// AggregateEngagement counts discussion comments from discussionRepo and
// issue comments from every repository in repos. A failed discussion fetch
// fails the aggregation; a failed issue fetch only skips that repository
// unless it is an authentication or rate limit error.
func AggregateEngagement(ctx context.Context, source CommentSource, discussionRepo string, repos []string, window domain.ReportWindow) (domain.EngagementMap, error) {
	engagement := make(domain.EngagementMap)

	owner, name, err := splitRepo(discussionRepo)
	if err != nil {
		return nil, err
	}
	discussions, err := source.FetchDiscussionComments(ctx, owner, name, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discussion comments from %s: %w", discussionRepo, err)
	}
	for _, c := range discussions {
		stats := statsFor(engagement, c.Author)
		stats.Discussions++
		stats.Total++
	}

	for _, repo := range repos {
		owner, name, err := splitRepo(repo)
		if err != nil {
			return nil, err
		}

		comments, err := source.FetchIssueComments(ctx, owner, name, window)
		if err != nil {
			if apperrors.IsUnauthorized(err) || apperrors.IsRateLimited(err) {
				return nil, err
			}
			logging.Log.WithField("repo", repo).Warnf("Skipping issue comments: %v", err)
			continue
		}
		for _, c := range comments {
			stats := statsFor(engagement, c.Author)
			stats.Issues++
			stats.Total++
		}
	}

	return engagement, nil
}

// ExcludeContributors returns the engagement participants who are neither
// bots nor code contributors, sorted by username
func ExcludeContributors(engagement domain.EngagementMap, contributors []string) []string {
	authors := make(map[string]bool, len(contributors))
	for _, c := range contributors {
		authors[c] = true
	}

	var candidates []string
	for user := range engagement {
		if classifier.IsBot(user) || authors[user] {
			continue
		}
		candidates = append(candidates, user)
	}
	sort.Strings(candidates)
	return candidates
}

// GetTopVoices ranks candidates by total engagement, highest first with
// ties broken by username, and returns at most count of them
func GetTopVoices(candidates []string, engagement domain.EngagementMap, count int) []string {
	ranked := make([]string, len(candidates))
	copy(ranked, candidates)

	total := func(user string) int {
		if stats, ok := engagement[user]; ok {
			return stats.Total
		}
		return 0
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := total(ranked[i]), total(ranked[j])
		if ti != tj {
			return ti > tj
		}
		return ranked[i] < ranked[j]
	})

	if count >= 0 && len(ranked) > count {
		ranked = ranked[:count]
	}
	return ranked
}

// BuildTopVoices produces the Top Voices section, unavailable when fewer
// than minCandidates engagement-only participants took part
func BuildTopVoices(engagement domain.EngagementMap, contributors []string, count, minCandidates int) domain.Feature[domain.TopVoices] {
	candidates := ExcludeContributors(engagement, contributors)
	if len(candidates) < minCandidates {
		return domain.Unavailable[domain.TopVoices](fmt.Sprintf("not enough participants for Top Voices (need %d, have %d)", minCandidates, len(candidates)))
	}

	tv := domain.TopVoices{Participants: len(candidates)}
	for _, stats := range engagement {
		tv.TotalDiscussions += stats.Discussions
		tv.TotalIssues += stats.Issues
	}
	for _, user := range GetTopVoices(candidates, engagement, count) {
		tv.Voices = append(tv.Voices, domain.Voice{Username: user, Engagement: *engagement[user]})
	}
	return domain.Available(tv)
}
