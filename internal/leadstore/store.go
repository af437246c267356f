// Package leadstore persists synthesized briefings onto lead records, in
// either a local flat JSON file or Salesforce. The backend is selected once
// at startup; callers are unaware which is active.
package leadstore

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-cli/internal/model"
)

// Store upserts briefing documents keyed by lead ID. Upsert errors are
// reported to the caller for metadata purposes but never abort a pipeline
// run; a briefing is still a briefing when persistence fails.
type Store interface {
	Upsert(ctx context.Context, leadID string, doc *model.BriefingDocument) error
	List(ctx context.Context) ([]model.LeadRecord, error)
}

// serializeBriefing renders the five-field briefing JSON stored on the lead
// record. The degraded-output error tag stays out of the stored payload.
func serializeBriefing(doc *model.BriefingDocument) (string, error) {
	stored := *doc
	stored.Error = ""
	b, err := json.Marshal(stored)
	if err != nil {
		return "", eris.Wrap(err, "leadstore: marshal briefing")
	}
	return string(b), nil
}
