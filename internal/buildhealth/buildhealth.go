package buildhealth

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/kurihiro0119/github-activity-report/internal/domain"
	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
	"github.com/kurihiro0119/github-activity-report/internal/logging"
)

// Source lists completed workflow runs
type Source interface {
	ListWorkflowRuns(ctx context.Context, owner, name, workflowFile string, window domain.ReportWindow) ([]domain.WorkflowRun, error)
}

// Workflow identifies a tracked Actions workflow file
type Workflow struct {
	Owner string
	Name  string
	File  string
}

// DisplayName is the row label used in the report
func (w Workflow) DisplayName() string {
	return fmt.Sprintf("%s %s", w.Name, strings.TrimSuffix(w.File, path.Ext(w.File)))
}

// ErrNoData is returned when no tracked workflow produced metrics
var ErrNoData = errors.New("no build metrics available")

// Collector gathers build health from workflow runs
type Collector struct {
	source    Source
	workflows []Workflow
}

// NewCollector creates a build health collector for the given workflows
func NewCollector(source Source, workflows []Workflow) *Collector {
	return &Collector{source: source, workflows: workflows}
}

// Collect summarizes completed runs of each workflow within the window. A
// workflow whose runs cannot be listed is skipped unless the failure must
// abort the run.
func (c *Collector) Collect(ctx context.Context, window domain.ReportWindow) (domain.BuildMetrics, error) {
	var metrics domain.BuildMetrics

	for _, wf := range c.workflows {
		repo := wf.Owner + "/" + wf.Name
		runs, err := c.source.ListWorkflowRuns(ctx, wf.Owner, wf.Name, wf.File, window)
		if err != nil {
			if apperrors.IsFatal(err) {
				return domain.BuildMetrics{}, err
			}
			logging.Log.WithField("repo", repo).Warnf("Skipping workflow %s: %v", wf.File, err)
			continue
		}
		metrics.Workflows = append(metrics.Workflows, Summarize(wf, runs))
	}

	if len(metrics.Workflows) == 0 {
		return domain.BuildMetrics{}, ErrNoData
	}
	return metrics, nil
}

// Summarize counts run conclusions for one workflow
func Summarize(wf Workflow, runs []domain.WorkflowRun) domain.WorkflowHealth {
	health := domain.WorkflowHealth{
		Name:     wf.DisplayName(),
		Repo:     wf.Owner + "/" + wf.Name,
		Workflow: wf.File,
	}
	for _, run := range runs {
		health.Total++
		switch run.Conclusion {
		case "success":
			health.Succeeded++
		case "failure", "timed_out", "startup_failure":
			health.Failed++
		case "cancelled":
			health.Cancelled++
		}
	}
	return health
}
