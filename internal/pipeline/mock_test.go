package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sells-group/briefing-cli/internal/model"
	"github.com/sells-group/briefing-cli/internal/store"
)

type mockGatherer struct {
	snap      model.IntelligenceSnapshot
	gotDomain string
	calls     int
}

func (m *mockGatherer) Gather(_ context.Context, domain string) model.IntelligenceSnapshot {
	m.calls++
	m.gotDomain = domain
	return m.snap
}

type mockSynthesizer struct {
	doc       *model.BriefingDocument
	panicWith string
	gotSnap   model.IntelligenceSnapshot
	gotRecord model.ContextRecord
	calls     int
}

func (m *mockSynthesizer) Synthesize(_ context.Context, snap model.IntelligenceSnapshot, record model.ContextRecord) *model.BriefingDocument {
	m.calls++
	m.gotSnap = snap
	m.gotRecord = record
	if m.panicWith != "" {
		panic(m.panicWith)
	}
	return m.doc
}

type mockLeadStore struct {
	upsertErr error
	gotLeadID string
	gotDoc    *model.BriefingDocument
	upserts   int
}

func (m *mockLeadStore) Upsert(_ context.Context, leadID string, doc *model.BriefingDocument) error {
	m.upserts++
	m.gotLeadID = leadID
	m.gotDoc = doc
	return m.upsertErr
}

func (m *mockLeadStore) List(_ context.Context) ([]model.LeadRecord, error) {
	return nil, nil
}

type completedRun struct {
	runID  string
	status model.RunStatus
	doc    *model.BriefingDocument
	meta   *model.Metadata
}

type mockRunStore struct {
	createErr   error
	completeErr error
	created     []model.BriefingRun
	completed   []completedRun
}

var _ store.Store = (*mockRunStore)(nil)

func (m *mockRunStore) CreateRun(_ context.Context, req model.BriefingRequest, companyName string) (*model.BriefingRun, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	run := model.BriefingRun{
		ID:          fmt.Sprintf("run-%d", len(m.created)+1),
		LeadID:      req.LeadID,
		ContextID:   req.ContextID,
		Domain:      req.CompanyDomain,
		CompanyName: companyName,
		Status:      model.RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}
	m.created = append(m.created, run)
	return &run, nil
}

func (m *mockRunStore) CompleteRun(_ context.Context, runID string, status model.RunStatus, doc *model.BriefingDocument, meta *model.Metadata) error {
	if m.completeErr != nil {
		return m.completeErr
	}
	m.completed = append(m.completed, completedRun{runID: runID, status: status, doc: doc, meta: meta})
	return nil
}

func (m *mockRunStore) GetRun(_ context.Context, _ string) (*model.BriefingRun, error) {
	return nil, nil
}

func (m *mockRunStore) ListRuns(_ context.Context, _ store.RunFilter) ([]model.BriefingRun, error) {
	return nil, nil
}

func (m *mockRunStore) Ping(_ context.Context) error    { return nil }
func (m *mockRunStore) Migrate(_ context.Context) error { return nil }
func (m *mockRunStore) Close() error                    { return nil }
