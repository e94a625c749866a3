package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-activity-report/internal/aggregator"
	"github.com/kurihiro0119/github-activity-report/internal/buildhealth"
	"github.com/kurihiro0119/github-activity-report/internal/classifier"
	"github.com/kurihiro0119/github-activity-report/internal/collector"
	"github.com/kurihiro0119/github-activity-report/internal/config"
	"github.com/kurihiro0119/github-activity-report/internal/domain"
	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
	"github.com/kurihiro0119/github-activity-report/internal/logging"
	"github.com/kurihiro0119/github-activity-report/internal/promotion"
	"github.com/kurihiro0119/github-activity-report/internal/report"
	"github.com/kurihiro0119/github-activity-report/internal/storage"
)

// Generator produces one monthly report
type Generator struct {
	cfg      *config.Config
	source   collector.Collector
	history  storage.HistoryStore
	annotate *logging.Annotator
	now      func() time.Time
}

// NewGenerator creates a report generator
func NewGenerator(cfg *config.Config, source collector.Collector, history storage.HistoryStore, annotate *logging.Annotator) *Generator {
	return &Generator{
		cfg:      cfg,
		source:   source,
		history:  history,
		annotate: annotate,
		now:      time.Now,
	}
}

// collected is the work fetched for a window, split by origin and author kind
type collected struct {
	planned       []domain.WorkItem
	opportunistic []domain.WorkItem
	bots          []domain.WorkItem
}

// Run generates and writes the report for window. Authorization and rate
// limit failures abort the run; an unreachable repository contributes no
// items and enrichments that fail are left out of the report.
func (g *Generator) Run(ctx context.Context, window domain.ReportWindow) (*domain.ReportRun, error) {
	run := &domain.ReportRun{
		ID:        uuid.New().String(),
		Window:    window,
		Status:    domain.RunStatusInProgress,
		StartedAt: g.now(),
	}
	log := logging.Log.WithField("run_id", run.ID)
	log.Infof("Report period: %s (%s to %s)", window.MonthYear(),
		window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))

	fail := func(err error) (*domain.ReportRun, error) {
		run.Status = domain.RunStatusFailed
		run.FinishedAt = g.now()
		return run, err
	}

	work, err := g.collectWork(ctx, log, window)
	if err != nil {
		return fail(err)
	}

	contributors := aggregator.UniquePRAuthors(append(append([]domain.WorkItem{}, work.planned...), work.opportunistic...))
	log.Infof("Unique contributors (PR authors): %d", len(contributors))

	newContributors, err := g.newContributors(log, contributors)
	run.Degraded = appendPartial(run.Degraded, err)
	topVoices, err := g.topVoices(ctx, log, window, contributors)
	run.Degraded = appendPartial(run.Degraded, err)

	botActivity := aggregator.AggregateBotActivity(work.bots)
	log.Infof("Bot activity groups: %d", len(botActivity))

	buildMetrics, err := g.buildMetrics(ctx, log, window)
	run.Degraded = appendPartial(run.Degraded, err)
	tapPromotions, err := g.tapPromotions(ctx, log, window)
	run.Degraded = appendPartial(run.Degraded, err)

	markdown := report.GenerateMarkdown(report.Data{
		Window:          window,
		GeneratedAt:     g.now(),
		Planned:         work.planned,
		Opportunistic:   work.opportunistic,
		Contributors:    contributors,
		NewContributors: newContributors,
		BotActivity:     botActivity,
		BuildMetrics:    buildMetrics,
		TapPromotions:   tapPromotions,
		TopVoices:       topVoices,
	})

	path, err := g.write(window, markdown)
	if err != nil {
		return fail(err)
	}

	run.Status = domain.RunStatusCompleted
	run.OutputPath = path
	run.PlannedItems = len(work.planned)
	run.OpportunisticItems = len(work.opportunistic)
	run.BotItems = len(work.bots)
	run.Contributors = len(contributors)
	run.NewContributors = len(newContributors)
	run.TapPromotions = len(tapPromotions.Value)
	run.TopVoices = len(topVoices.Value.Voices)
	run.FinishedAt = g.now()

	log.Infof("Report generated: %s", path)
	g.annotate.Notice(fmt.Sprintf("Report generated: %d planned + %d opportunistic, %d contributors, %d new, %d tap promotions, %d top voices",
		run.PlannedItems, run.OpportunisticItems, run.Contributors, run.NewContributors, run.TapPromotions, run.TopVoices))
	return run, nil
}

// collectWork fetches merged pull requests from the planned repository and
// every other monitored repository, separating bot authors
func (g *Generator) collectWork(ctx context.Context, log *logrus.Entry, window domain.ReportWindow) (*collected, error) {
	owner, name, err := config.SplitRepo(g.cfg.PlannedRepo)
	if err != nil {
		return nil, err
	}

	log.Infof("Fetching planned work from %s...", g.cfg.PlannedRepo)
	items, err := g.source.FetchClosedItemsFromRepo(ctx, owner, name, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch planned work from %s: %w", g.cfg.PlannedRepo, err)
	}
	plannedPRs := domain.FilterPullRequests(items)
	log.Infof("Planned work items: %d PRs (%d issues excluded)", len(plannedPRs), len(items)-len(plannedPRs))

	log.Info("Fetching opportunistic work from other monitored repositories...")
	var opportunisticItems []domain.WorkItem
	for _, repo := range g.cfg.MonitoredRepos {
		if repo == g.cfg.PlannedRepo {
			continue
		}
		owner, name, err := config.SplitRepo(repo)
		if err != nil {
			return nil, err
		}
		log.WithField("repo", repo).Debug("Fetching closed items")
		repoItems, err := g.source.FetchClosedItemsFromRepo(ctx, owner, name, window)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", repo, err)
		}
		opportunisticItems = append(opportunisticItems, repoItems...)
	}
	opportunisticPRs := domain.FilterPullRequests(opportunisticItems)
	log.Infof("Opportunistic work items: %d PRs (%d issues excluded)", len(opportunisticPRs), len(opportunisticItems)-len(opportunisticPRs))

	if len(plannedPRs) == 0 && len(opportunisticPRs) == 0 {
		log.Warn("No items completed in this period, generating quiet period report")
		g.annotate.Warning("This was a quiet period with no completed items")
	}

	work := &collected{}
	var plannedBots, opportunisticBots []domain.WorkItem
	work.planned, plannedBots = aggregator.SplitBots(plannedPRs, classifier.IsBot)
	work.opportunistic, opportunisticBots = aggregator.SplitBots(opportunisticPRs, classifier.IsBot)
	work.bots = append(plannedBots, opportunisticBots...)

	log.Infof("Planned work (human): %d", len(work.planned))
	log.Infof("Opportunistic work (human): %d", len(work.opportunistic))
	log.Infof("Bot contributions: %d", len(work.bots))
	return work, nil
}

// partial records a failed optional feature as a partial failure
func partial(log *logrus.Entry, feature string, err error) error {
	perr := apperrors.NewPartialError(feature, err)
	log.Warnf("%v, continuing without it", perr)
	return perr
}

func appendPartial(reasons []string, err error) []string {
	if err == nil {
		return reasons
	}
	return append(reasons, err.Error())
}

func (g *Generator) newContributors(log *logrus.Entry, contributors []string) ([]string, error) {
	fresh, err := g.history.UpdateContributorHistory(contributors)
	if err != nil {
		return nil, partial(log, "new contributor detection", err)
	}
	if len(fresh) > 0 {
		log.Infof("New contributors this period: %v", fresh)
		g.annotate.Notice(fmt.Sprintf("🎉 %d new %s this period!", len(fresh), plural(len(fresh), "contributor")))
	}
	return fresh, nil
}

func (g *Generator) topVoices(ctx context.Context, log *logrus.Entry, window domain.ReportWindow, contributors []string) (domain.Feature[domain.TopVoices], error) {
	log.Info("Analyzing community engagement...")
	engagement, err := aggregator.AggregateEngagement(ctx, g.source, g.cfg.DiscussionRepo, g.cfg.MonitoredRepos, window)
	if err != nil {
		perr := partial(log, "engagement tracking", err)
		return domain.Unavailable[domain.TopVoices](perr.Error()), perr
	}

	tv := aggregator.BuildTopVoices(engagement, contributors, g.cfg.TopVoicesCount, g.cfg.MinTopVoices)
	if !tv.OK {
		log.Info(tv.Reason)
		return tv, nil
	}
	log.Infof("Top Voices identified: %d", len(tv.Value.Voices))
	g.annotate.Notice(fmt.Sprintf("👥 %d Top Voices identified (%d participants)", len(tv.Value.Voices), tv.Value.Participants))
	return tv, nil
}

func (g *Generator) buildMetrics(ctx context.Context, log *logrus.Entry, window domain.ReportWindow) (domain.Feature[domain.BuildMetrics], error) {
	log.Info("Fetching build health metrics...")
	workflows := make([]buildhealth.Workflow, 0, len(g.cfg.BuildWorkflows))
	for _, spec := range g.cfg.BuildWorkflows {
		owner, name, file, err := config.SplitWorkflow(spec)
		if err != nil {
			log.Warnf("Ignoring workflow %q: %v", spec, err)
			continue
		}
		workflows = append(workflows, buildhealth.Workflow{Owner: owner, Name: name, File: file})
	}

	metrics, err := buildhealth.NewCollector(g.source, workflows).Collect(ctx, window)
	if err != nil {
		perr := partial(log, "build metrics", err)
		return domain.Unavailable[domain.BuildMetrics](perr.Error()), perr
	}
	log.Infof("Build metrics fetched: %d workflows tracked", len(metrics.Workflows))
	return domain.Available(metrics), nil
}

func (g *Generator) tapPromotions(ctx context.Context, log *logrus.Entry, window domain.ReportWindow) (domain.Feature[[]domain.TapPromotion], error) {
	log.Info("Fetching homebrew tap promotions...")
	detector := promotion.NewDetector(g.source, g.cfg.ProductionTap, g.cfg.ExperimentalTap)
	promotions, err := detector.FetchTapPromotions(ctx, window)
	if err != nil {
		perr := partial(log, "tap promotions", err)
		return domain.Unavailable[[]domain.TapPromotion](perr.Error()), perr
	}
	if len(promotions) > 0 {
		log.Infof("Tap promotions found: %d packages", len(promotions))
		g.annotate.Notice(fmt.Sprintf("🍺 %d packages promoted to production-tap", len(promotions)))
	} else {
		log.Info("No tap promotions this period")
	}
	return domain.Available(promotions), nil
}

// write stores the report as <output-dir>/<yyyy-MM-dd>-report.mdx
func (g *Generator) write(window domain.ReportWindow, markdown string) (string, error) {
	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(g.cfg.OutputDir, window.FileDate()+"-report.mdx")
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
