package leadstore

import (
	"context"

	"github.com/sells-group/briefing-cli/internal/model"
)

// recordedUpdate captures one UpdateOne call.
type recordedUpdate struct {
	object string
	id     string
	fields map[string]any
}

// mockSFClient implements salesforce.Client for testing.
type mockSFClient struct {
	queryFn   func(ctx context.Context, soql string, out any) error
	updateErr error
	updates   []recordedUpdate
}

func (m *mockSFClient) Query(ctx context.Context, soql string, out any) error {
	if m.queryFn != nil {
		return m.queryFn(ctx, soql, out)
	}
	return nil
}

func (m *mockSFClient) UpdateOne(_ context.Context, sObjectName, id string, fields map[string]any) error {
	m.updates = append(m.updates, recordedUpdate{object: sObjectName, id: id, fields: fields})
	return m.updateErr
}

// sampleDoc returns a fully populated briefing document for store tests.
func sampleDoc() *model.BriefingDocument {
	return &model.BriefingDocument{
		CompanyProfile:       "Acme Corp is a mid-market logistics software vendor.",
		KeyUpdates:           []string{"Raised Series B"},
		LeadAngle:            "Expansion suggests appetite for route optimization.",
		ConversationStarters: []string{"How are you handling the new volume?"},
		PotentialObjections: []model.ObjectionEntry{
			{Objection: "Too busy", Response: "Offer a scoped demo."},
		},
	}
}
