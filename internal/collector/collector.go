package collector

import (
	"context"

	"github.com/kurihiro0119/github-activity-report/internal/domain"
)

// Collector defines the interface for querying GitHub
type Collector interface {
	// FetchClosedItems returns closed issues and merged pull requests of a
	// repository within the window. Any failure is returned.
	FetchClosedItems(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.WorkItem, error)

	// FetchClosedItemsFromRepo is the lenient variant used for monitored
	// repositories: only authentication and rate limit errors are returned
	FetchClosedItemsFromRepo(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.WorkItem, error)

	// FetchMergedPullRequests returns pull requests merged within the window
	FetchMergedPullRequests(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.PullRequestRef, error)

	// ListPullRequestFiles returns the files changed by a pull request
	ListPullRequestFiles(ctx context.Context, owner, name string, number int) ([]domain.PullRequestFile, error)

	// GetFileContent returns the decoded content of a file on the default branch
	GetFileContent(ctx context.Context, owner, name, path string) (string, error)

	// FetchDiscussionComments returns discussion comments and replies created
	// within the window, excluding those by the discussion author
	FetchDiscussionComments(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.Comment, error)

	// FetchIssueComments returns issue comments created within the window,
	// excluding those by the issue author
	FetchIssueComments(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.Comment, error)

	// ListWorkflowRuns returns completed runs of a workflow file created within the window
	ListWorkflowRuns(ctx context.Context, owner, name, workflowFile string, window domain.ReportWindow) ([]domain.WorkflowRun, error)

	// FetchProjectItems returns all items of an organization project board
	FetchProjectItems(ctx context.Context, org string, number int) ([]domain.BoardItem, error)
}

// StatusValue returns the board item's "Status" field, or "" when unset
func StatusValue(item domain.BoardItem) string {
	return item.Fields["Status"]
}

// FilterByStatus returns the board items whose status equals status
func FilterByStatus(items []domain.BoardItem, status string) []domain.BoardItem {
	var filtered []domain.BoardItem
	for _, item := range items {
		if StatusValue(item) == status {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
