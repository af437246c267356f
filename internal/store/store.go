// Package store persists the briefing run journal. Two drivers implement
// the same interface: SQLite for single-binary deployments and Postgres for
// shared environments. Journal writes are best-effort and never sit on the
// request path.
package store

import (
	"context"

	"github.com/sells-group/briefing-cli/internal/model"
)

// RunFilter specifies criteria for listing briefing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	LeadID string          `json:"lead_id,omitempty"`
	Domain string          `json:"domain,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the run journal.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, req model.BriefingRequest, companyName string) (*model.BriefingRun, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, doc *model.BriefingDocument, meta *model.Metadata) error
	GetRun(ctx context.Context, runID string) (*model.BriefingRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.BriefingRun, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
