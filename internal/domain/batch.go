package domain

import "time"

// RunStatus is the outcome of a report run
type RunStatus string

const (
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// ReportRun represents one report generation
type ReportRun struct {
	ID                 string
	Window             ReportWindow
	Status             RunStatus
	OutputPath         string
	PlannedItems       int
	OpportunisticItems int
	BotItems           int
	Contributors       int
	NewContributors    int
	TapPromotions      int
	TopVoices          int
	Degraded           []string // reasons optional sections were left out
	StartedAt          time.Time
	FinishedAt         time.Time
}
