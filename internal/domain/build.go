package domain

// WorkflowHealth summarizes completed runs of one workflow
type WorkflowHealth struct {
	Name      string
	Repo      string
	Workflow  string
	Total     int
	Succeeded int
	Failed    int
	Cancelled int
}

// SuccessRate returns the percentage of successful runs
func (w WorkflowHealth) SuccessRate() float64 {
	if w.Total == 0 {
		return 0
	}
	return float64(w.Succeeded) / float64(w.Total) * 100
}

// BuildMetrics is the build health section of a report
type BuildMetrics struct {
	Workflows []WorkflowHealth
}

// WorkflowRun is a single completed Actions run
type WorkflowRun struct {
	ID         int64
	Conclusion string
}
