package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/google/go-github/v55/github"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/github-activity-report/internal/domain"
	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
	"github.com/kurihiro0119/github-activity-report/internal/logging"
)

// GraphQLDoer executes a GraphQL query and decodes its data into response
type GraphQLDoer interface {
	DoWithContext(ctx context.Context, query string, variables map[string]interface{}, response interface{}) error
}

// Options configures the GitHub collector
type Options struct {
	Token        string
	RequestDelay time.Duration
	Timeout      time.Duration
}

// githubCollector implements Collector using the GitHub GraphQL and REST APIs
type githubCollector struct {
	graphql     GraphQLDoer
	client      *github.Client
	rateLimiter RateLimiter
	retry       RetryConfig
}

// NewGitHubCollector creates a new GitHub collector
func NewGitHubCollector(opts Options) (Collector, error) {
	if opts.Token == "" {
		return nil, apperrors.NewConfigurationError("GitHub token is required", nil)
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	gql, err := api.NewGraphQLClient(api.ClientOptions{
		AuthToken: opts.Token,
		Host:      "github.com",
		Timeout:   opts.Timeout,
	})
	if err != nil {
		return nil, apperrors.NewConfigurationError("failed to create GraphQL client", err)
	}

	return &githubCollector{
		graphql:     gql,
		client:      github.NewClient(newRESTHTTPClient(opts.Token, opts.Timeout)),
		rateLimiter: NewRateLimiter(opts.RequestDelay, 0),
		retry:       DefaultRetryConfig(),
	}, nil
}

// newRESTHTTPClient layers the token transport over a retrying client
func newRESTHTTPClient(token string, timeout time.Duration) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 2 * time.Second
	rc.RetryWaitMax = 8 * time.Second
	rc.HTTPClient.Timeout = timeout
	rc.Logger = retryLogger{}
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
				return false, nil
			}
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, rc.StandardClient())
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(ctx, ts)
}

// retryLogger routes retryablehttp's leveled logs to logrus at debug level
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...interface{}) {
	logging.Log.WithField("http", keysAndValues).Debug(msg)
}

func (retryLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Log.WithField("http", keysAndValues).Debug(msg)
}

func (retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logging.Log.WithField("http", keysAndValues).Debug(msg)
}

func (retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logging.Log.WithField("http", keysAndValues).Debug(msg)
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type actor struct {
	Login string `json:"login"`
}

type labelConnection struct {
	Nodes []struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	} `json:"nodes"`
}

func (l labelConnection) toDomain() []domain.Label {
	labels := make([]domain.Label, 0, len(l.Nodes))
	for _, n := range l.Nodes {
		labels = append(labels, domain.Label{Name: n.Name, Color: n.Color})
	}
	return labels
}

type itemNode struct {
	Number    int             `json:"number"`
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	ClosedAt  *time.Time      `json:"closedAt"`
	MergedAt  *time.Time      `json:"mergedAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Labels    labelConnection `json:"labels"`
	Author    *actor          `json:"author"`
}

func (n itemNode) author() string {
	if n.Author == nil {
		return ""
	}
	return n.Author.Login
}

type closedIssuesResponse struct {
	Repository *struct {
		Issues struct {
			PageInfo pageInfo   `json:"pageInfo"`
			Nodes    []itemNode `json:"nodes"`
		} `json:"issues"`
	} `json:"repository"`
}

type mergedPullRequestsResponse struct {
	Repository *struct {
		PullRequests struct {
			PageInfo pageInfo   `json:"pageInfo"`
			Nodes    []itemNode `json:"nodes"`
		} `json:"pullRequests"`
	} `json:"repository"`
}

func cursorVar(cursor string) interface{} {
	if cursor == "" {
		return nil
	}
	return cursor
}

// query runs a GraphQL query with retries
func (c *githubCollector) query(ctx context.Context, op, query string, vars map[string]interface{}, resp interface{}) error {
	return c.withRetry(ctx, op, func(ctx context.Context) error {
		return c.graphql.DoWithContext(ctx, query, vars, resp)
	})
}

// FetchClosedItems retrieves closed issues and merged pull requests within the window
func (c *githubCollector) FetchClosedItems(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.WorkItem, error) {
	repo := owner + "/" + name

	issues, err := c.fetchClosedIssues(ctx, owner, name, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch closed issues for %s: %w", repo, err)
	}

	prs, err := c.fetchMergedPRNodes(ctx, owner, name, window, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch merged pull requests for %s: %w", repo, err)
	}

	items := make([]domain.WorkItem, 0, len(issues)+len(prs))
	items = append(items, issues...)
	for _, n := range prs {
		items = append(items, domain.WorkItem{
			Type:       domain.ItemTypePullRequest,
			Number:     n.Number,
			Title:      n.Title,
			URL:        n.URL,
			Author:     n.author(),
			Repository: repo,
			Labels:     n.Labels.toDomain(),
			ClosedAt:   *n.MergedAt,
		})
	}

	logging.Log.WithField("repo", repo).Debugf("Fetched %d issues and %d pull requests", len(issues), len(prs))
	return items, nil
}

// FetchClosedItemsFromRepo returns an empty list for recoverable failures
func (c *githubCollector) FetchClosedItemsFromRepo(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.WorkItem, error) {
	items, err := c.FetchClosedItems(ctx, owner, name, window)
	if err != nil {
		if apperrors.IsUnauthorized(err) || apperrors.IsRateLimited(err) {
			return nil, err
		}
		logging.Log.WithField("repo", owner+"/"+name).Warnf("Skipping repository: %v", err)
		return []domain.WorkItem{}, nil
	}
	return items, nil
}

func (c *githubCollector) fetchClosedIssues(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.WorkItem, error) {
	repo := owner + "/" + name
	var items []domain.WorkItem
	cursor := ""

	for {
		var resp closedIssuesResponse
		vars := map[string]interface{}{
			"owner":  owner,
			"name":   name,
			"since":  window.Start.Format(time.RFC3339),
			"cursor": cursorVar(cursor),
		}
		if err := c.query(ctx, "closed issues of "+repo, closedIssuesQuery, vars, &resp); err != nil {
			return nil, err
		}
		if resp.Repository == nil {
			return nil, apperrors.NewNotFoundError("repository " + repo)
		}

		conn := resp.Repository.Issues
		for _, n := range conn.Nodes {
			if n.ClosedAt == nil || !window.Contains(*n.ClosedAt) {
				continue
			}
			items = append(items, domain.WorkItem{
				Type:       domain.ItemTypeIssue,
				Number:     n.Number,
				Title:      n.Title,
				URL:        n.URL,
				Author:     n.author(),
				Repository: repo,
				Labels:     n.Labels.toDomain(),
				ClosedAt:   *n.ClosedAt,
			})
		}

		if !conn.PageInfo.HasNextPage {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}

	return items, nil
}

// fetchMergedPRNodes pages through merged pull requests newest-updated
// first. With stopEarly set, paging ends once a page's last pull request was
// last updated before the window, since nothing after it can have merged
// inside the window.
func (c *githubCollector) fetchMergedPRNodes(ctx context.Context, owner, name string, window domain.ReportWindow, stopEarly bool) ([]itemNode, error) {
	repo := owner + "/" + name
	var nodes []itemNode
	cursor := ""

	for {
		var resp mergedPullRequestsResponse
		vars := map[string]interface{}{
			"owner":  owner,
			"name":   name,
			"cursor": cursorVar(cursor),
		}
		if err := c.query(ctx, "merged pull requests of "+repo, mergedPullRequestsQuery, vars, &resp); err != nil {
			return nil, err
		}
		if resp.Repository == nil {
			return nil, apperrors.NewNotFoundError("repository " + repo)
		}

		conn := resp.Repository.PullRequests
		for _, n := range conn.Nodes {
			if n.MergedAt == nil || !window.Contains(*n.MergedAt) {
				continue
			}
			nodes = append(nodes, n)
		}

		if !conn.PageInfo.HasNextPage {
			break
		}
		if stopEarly && len(conn.Nodes) > 0 && conn.Nodes[len(conn.Nodes)-1].UpdatedAt.Before(window.Start) {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}

	return nodes, nil
}

// FetchMergedPullRequests retrieves pull requests merged within the window
func (c *githubCollector) FetchMergedPullRequests(ctx context.Context, owner, name string, window domain.ReportWindow) ([]domain.PullRequestRef, error) {
	nodes, err := c.fetchMergedPRNodes(ctx, owner, name, window, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch merged pull requests for %s/%s: %w", owner, name, err)
	}

	refs := make([]domain.PullRequestRef, 0, len(nodes))
	for _, n := range nodes {
		refs = append(refs, domain.PullRequestRef{
			Number:   n.Number,
			Title:    n.Title,
			URL:      n.URL,
			MergedAt: *n.MergedAt,
		})
	}
	return refs, nil
}

// ListPullRequestFiles retrieves the files changed by a pull request
func (c *githubCollector) ListPullRequestFiles(ctx context.Context, owner, name string, number int) ([]domain.PullRequestFile, error) {
	op := fmt.Sprintf("files of %s/%s#%d", owner, name, number)
	var files []domain.PullRequestFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, resp, err := c.client.PullRequests.ListFiles(ctx, owner, name, number, opts)
		if err != nil {
			return nil, classifyError(op, err)
		}
		c.updateRateLimitFromResponse(resp)

		for _, f := range page {
			files = append(files, domain.PullRequestFile{
				Filename: f.GetFilename(),
				Status:   f.GetStatus(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, nil
}

// GetFileContent retrieves and decodes a file from the default branch
func (c *githubCollector) GetFileContent(ctx context.Context, owner, name, path string) (string, error) {
	op := fmt.Sprintf("%s in %s/%s", path, owner, name)
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	file, _, resp, err := c.client.Repositories.GetContents(ctx, owner, name, path, nil)
	if err != nil {
		return "", classifyError(op, err)
	}
	c.updateRateLimitFromResponse(resp)

	if file == nil {
		return "", apperrors.NewNotFoundError(op)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", apperrors.NewInternalError("failed to decode "+op, err)
	}
	return content, nil
}

// ListWorkflowRuns retrieves completed runs of a workflow created within the window
func (c *githubCollector) ListWorkflowRuns(ctx context.Context, owner, name, workflowFile string, window domain.ReportWindow) ([]domain.WorkflowRun, error) {
	op := fmt.Sprintf("workflow runs of %s in %s/%s", workflowFile, owner, name)
	var runs []domain.WorkflowRun
	opts := &github.ListWorkflowRunsOptions{
		Status:      "completed",
		Created:     fmt.Sprintf("%s..%s", window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339)),
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, resp, err := c.client.Actions.ListWorkflowRunsByFileName(ctx, owner, name, workflowFile, opts)
		if err != nil {
			return nil, classifyError(op, err)
		}
		c.updateRateLimitFromResponse(resp)

		for _, run := range page.WorkflowRuns {
			runs = append(runs, domain.WorkflowRun{
				ID:         run.GetID(),
				Conclusion: run.GetConclusion(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return runs, nil
}

// updateRateLimitFromResponse updates the rate limiter from API response
func (c *githubCollector) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Limit > 0 {
		c.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}
