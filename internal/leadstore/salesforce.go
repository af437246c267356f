package leadstore

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-cli/internal/config"
	"github.com/sells-group/briefing-cli/internal/model"
	"github.com/sells-group/briefing-cli/pkg/salesforce"
)

// SalesforceStore writes briefings to a custom long-text field on the remote
// lead object. Unlike the local store it never creates records: the lead must
// already exist in the org, and a failed update surfaces as an error for the
// caller to fold into response metadata.
type SalesforceStore struct {
	client salesforce.Client
	object string
	field  string
}

func NewSalesforceStore(client salesforce.Client, cfg config.LeadsConfig) *SalesforceStore {
	object := cfg.SalesforceObject
	if object == "" {
		object = "Lead"
	}
	field := cfg.BriefingField
	if field == "" {
		field = "AI_Pre_Call_Briefing__c"
	}
	return &SalesforceStore{client: client, object: object, field: field}
}

func (s *SalesforceStore) Upsert(ctx context.Context, leadID string, doc *model.BriefingDocument) error {
	briefingJSON, err := serializeBriefing(doc)
	if err != nil {
		return err
	}

	if err := s.client.UpdateOne(ctx, s.object, leadID, map[string]any{s.field: briefingJSON}); err != nil {
		return eris.Wrapf(err, "leadstore: update %s %s", s.object, leadID)
	}

	zap.L().Info("leadstore: updated salesforce lead",
		zap.String("lead_id", leadID),
		zap.String("field", s.field),
	)
	return nil
}

func (s *SalesforceStore) List(ctx context.Context) ([]model.LeadRecord, error) {
	leads, err := salesforce.ListLeads(ctx, s.client, 0)
	if err != nil {
		return nil, eris.Wrap(err, "leadstore: list salesforce leads")
	}

	records := make([]model.LeadRecord, 0, len(leads))
	for _, l := range leads {
		records = append(records, model.LeadRecord{
			LeadID:      l.ID,
			DisplayName: l.Name,
			CompanyName: l.Company,
			Briefing:    l.Briefing,
			Status:      model.LeadStatus(l.Status),
		})
	}
	return records, nil
}
