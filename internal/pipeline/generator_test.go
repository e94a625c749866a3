package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kurihiro0119/github-activity-report/internal/config"
	"github.com/kurihiro0119/github-activity-report/internal/domain"
	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
	"github.com/kurihiro0119/github-activity-report/internal/logging"
	"github.com/kurihiro0119/github-activity-report/internal/storage/jsonfile"
)

type fakeCollector struct {
	items      map[string][]domain.WorkItem
	itemErrs   map[string]error
	fetched    []string
	comments   []domain.Comment
	commentErr error
	runs       []domain.WorkflowRun
	runsErr    error
	merged     []domain.PullRequestRef
	files      map[int][]domain.PullRequestFile
	contents   map[string]string
}

func (f *fakeCollector) FetchClosedItems(_ context.Context, owner, name string, _ domain.ReportWindow) ([]domain.WorkItem, error) {
	repo := owner + "/" + name
	f.fetched = append(f.fetched, repo)
	if err := f.itemErrs[repo]; err != nil {
		return nil, err
	}
	return f.items[repo], nil
}

func (f *fakeCollector) FetchClosedItemsFromRepo(ctx context.Context, owner, name string, w domain.ReportWindow) ([]domain.WorkItem, error) {
	items, err := f.FetchClosedItems(ctx, owner, name, w)
	if err != nil {
		if apperrors.IsFatal(err) {
			return nil, err
		}
		return []domain.WorkItem{}, nil
	}
	return items, nil
}

func (f *fakeCollector) FetchMergedPullRequests(context.Context, string, string, domain.ReportWindow) ([]domain.PullRequestRef, error) {
	return f.merged, nil
}

func (f *fakeCollector) ListPullRequestFiles(_ context.Context, _, _ string, number int) ([]domain.PullRequestFile, error) {
	return f.files[number], nil
}

func (f *fakeCollector) GetFileContent(_ context.Context, _, _, path string) (string, error) {
	return f.contents[path], nil
}

func (f *fakeCollector) FetchDiscussionComments(context.Context, string, string, domain.ReportWindow) ([]domain.Comment, error) {
	return f.comments, f.commentErr
}

func (f *fakeCollector) FetchIssueComments(context.Context, string, string, domain.ReportWindow) ([]domain.Comment, error) {
	return nil, nil
}

func (f *fakeCollector) ListWorkflowRuns(context.Context, string, string, string, domain.ReportWindow) ([]domain.WorkflowRun, error) {
	return f.runs, f.runsErr
}

func (f *fakeCollector) FetchProjectItems(context.Context, string, int) ([]domain.BoardItem, error) {
	return nil, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		GitHubToken:     "token",
		PlannedRepo:     "projectbluefin/common",
		MonitoredRepos:  []string{"ublue-os/bluefin", "projectbluefin/common", "ublue-os/homebrew-tap"},
		DiscussionRepo:  "ublue-os/bluefin",
		ProductionTap:   "ublue-os/homebrew-tap",
		ExperimentalTap: "ublue-os/homebrew-experimental-tap",
		BuildWorkflows:  []string{"ublue-os/bluefin:build.yml"},
		OutputDir:       filepath.Join(dir, "reports"),
		HistoryPath:     filepath.Join(dir, "history.json"),
		TopVoicesCount:  10,
		MinTopVoices:    5,
	}
}

func newTestGenerator(cfg *config.Config, source *fakeCollector) (*Generator, *bytes.Buffer) {
	var out bytes.Buffer
	g := NewGenerator(cfg, source, jsonfile.NewHistoryStore(cfg.HistoryPath), &logging.Annotator{Out: &out, Err: &out})
	g.now = func() time.Time { return time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC) }
	return g, &out
}

func januaryWindow(t *testing.T) domain.ReportWindow {
	t.Helper()
	w, err := domain.CalculateReportWindow(time.Now(), "2026-01")
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestRunWritesReport(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	source := &fakeCollector{
		items: map[string][]domain.WorkItem{
			"projectbluefin/common": {
				{Type: domain.ItemTypePullRequest, Number: 1, Title: "Tune dconf", URL: "https://github.com/projectbluefin/common/pull/1", Author: "alice", Repository: "projectbluefin/common", Labels: []domain.Label{{Name: "area/gnome"}}},
				{Type: domain.ItemTypeIssue, Number: 2, Title: "Closed issue", URL: "https://github.com/projectbluefin/common/issues/2", Author: "zoe", Repository: "projectbluefin/common"},
			},
			"ublue-os/bluefin": {
				{Type: domain.ItemTypePullRequest, Number: 3, Title: "Bump deps", URL: "https://github.com/ublue-os/bluefin/pull/3", Author: "renovate[bot]", Repository: "ublue-os/bluefin"},
				{Type: domain.ItemTypePullRequest, Number: 4, Title: "Fix kernel args", URL: "https://github.com/ublue-os/bluefin/pull/4", Author: "bob", Repository: "ublue-os/bluefin"},
			},
		},
		itemErrs: map[string]error{
			"ublue-os/homebrew-tap": apperrors.NewNotFoundError("repository"),
		},
		runs: []domain.WorkflowRun{{ID: 1, Conclusion: "success"}},
	}
	g, annotations := newTestGenerator(cfg, source)

	run, err := g.Run(context.Background(), januaryWindow(t))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if run.Status != domain.RunStatusCompleted || run.ID == "" {
		t.Fatalf("run = %+v", run)
	}
	if run.PlannedItems != 1 || run.OpportunisticItems != 1 || run.BotItems != 1 || run.Contributors != 2 || run.NewContributors != 2 {
		t.Fatalf("run counts = %+v", run)
	}

	if len(run.Degraded) != 0 {
		t.Fatalf("degraded = %v, want none", run.Degraded)
	}

	wantPath := filepath.Join(cfg.OutputDir, "2026-01-31-report.mdx")
	if run.OutputPath != wantPath {
		t.Fatalf("OutputPath = %s, want %s", run.OutputPath, wantPath)
	}
	content, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	md := string(content)
	for _, want := range []string{"Monthly Report: January 2026", "Tune dconf", "Fix kernel args", "Bot Activity", "Build Health", "2 new, 2 total"} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(md, "Closed issue") {
		t.Errorf("closed issues should be excluded")
	}
	if strings.Contains(md, "Top Voices") {
		t.Errorf("top voices should be omitted without enough participants")
	}

	wantFetched := []string{"projectbluefin/common", "ublue-os/bluefin", "ublue-os/homebrew-tap"}
	if strings.Join(source.fetched, ",") != strings.Join(wantFetched, ",") {
		t.Errorf("fetched = %v, want %v", source.fetched, wantFetched)
	}

	if !strings.Contains(annotations.String(), "::notice::🎉 2 new contributors this period!") {
		t.Errorf("annotations = %s", annotations.String())
	}

	again, err := g.Run(context.Background(), januaryWindow(t))
	if err != nil {
		t.Fatalf("second Run() unexpected error: %v", err)
	}
	if again.NewContributors != 0 {
		t.Fatalf("second run new contributors = %d, want 0", again.NewContributors)
	}
}

func TestRunQuietPeriod(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	source := &fakeCollector{runsErr: errors.New("actions disabled")}
	g, annotations := newTestGenerator(cfg, source)

	run, err := g.Run(context.Background(), januaryWindow(t))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if !strings.Contains(annotations.String(), "::warning::This was a quiet period with no completed items") {
		t.Fatalf("annotations = %s", annotations.String())
	}

	content, err := os.ReadFile(run.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(content), "Build Health") {
		t.Fatalf("build health should be omitted when unavailable")
	}
	if len(run.Degraded) != 1 || !strings.HasPrefix(run.Degraded[0], "PARTIAL_FAILURE: build metrics unavailable") {
		t.Fatalf("degraded = %v", run.Degraded)
	}
	if !strings.Contains(string(content), "_ChillOps_") {
		t.Fatalf("quiet report should show ChillOps")
	}
}

func TestRunFatalErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		errs map[string]error
		want func(error) bool
	}{
		{
			name: "rate limited planned repository",
			errs: map[string]error{"projectbluefin/common": apperrors.NewRateLimitedError("limit", time.Time{}, nil)},
			want: apperrors.IsRateLimited,
		},
		{
			name: "rate limited monitored repository",
			errs: map[string]error{"ublue-os/bluefin": apperrors.NewRateLimitedError("limit", time.Time{}, nil)},
			want: apperrors.IsRateLimited,
		},
		{
			name: "unauthorized monitored repository",
			errs: map[string]error{"ublue-os/homebrew-tap": apperrors.NewUnauthorizedError("bad token", nil)},
			want: apperrors.IsUnauthorized,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(t)
			g, _ := newTestGenerator(cfg, &fakeCollector{itemErrs: tc.errs})

			run, err := g.Run(context.Background(), januaryWindow(t))
			if !tc.want(err) {
				t.Fatalf("error = %v, unexpected classification", err)
			}
			if run.Status != domain.RunStatusFailed {
				t.Fatalf("status = %s", run.Status)
			}
			if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
				t.Fatalf("no report should be written")
			}
		})
	}
}

func TestRunPlannedRepositoryUnreachable(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	source := &fakeCollector{
		items: map[string][]domain.WorkItem{
			"ublue-os/bluefin": {
				{Type: domain.ItemTypePullRequest, Number: 4, Title: "Fix kernel args", URL: "https://github.com/ublue-os/bluefin/pull/4", Author: "bob", Repository: "ublue-os/bluefin"},
			},
		},
		itemErrs: map[string]error{
			"projectbluefin/common": apperrors.NewNetworkError("connection reset", errors.New("read: connection reset by peer")),
		},
	}
	g, _ := newTestGenerator(cfg, source)

	run, err := g.Run(context.Background(), januaryWindow(t))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if run.Status != domain.RunStatusCompleted {
		t.Fatalf("status = %s", run.Status)
	}
	if run.PlannedItems != 0 || run.OpportunisticItems != 1 {
		t.Fatalf("run counts = %+v", run)
	}

	content, err := os.ReadFile(run.OutputPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(content), "Fix kernel args") {
		t.Fatalf("opportunistic work missing from report")
	}
}
