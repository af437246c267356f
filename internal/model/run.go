package model

import "time"

// RunStatus represents the current state of a briefing run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusDegraded  RunStatus = "degraded"
	RunStatusFailed    RunStatus = "failed"
)

// BriefingRun is one journaled pipeline execution. Runs are written to the
// run-history store for observability and are never on the request path.
type BriefingRun struct {
	ID          string            `json:"id"`
	LeadID      string            `json:"lead_id"`
	ContextID   string            `json:"context_id"`
	Domain      string            `json:"domain"`
	CompanyName string            `json:"company_name"`
	Status      RunStatus         `json:"status"`
	Briefing    *BriefingDocument `json:"briefing,omitempty"`
	Metadata    *Metadata         `json:"metadata,omitempty"`
	Error       string            `json:"error,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	DurationMS  int64             `json:"duration_ms"`
}
