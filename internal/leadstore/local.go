package leadstore

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-cli/internal/model"
)

// Local stores lead records in a flat JSON file. Every call reads and writes
// the whole collection; concurrent upserts race and the last writer wins,
// which is acceptable for a single-process store.
type Local struct {
	path string
}

func NewLocal(path string) *Local {
	return &Local{path: path}
}

// load reads the record collection, starting empty when the file is absent
// or unreadable as JSON.
func (s *Local) load() []model.LeadRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("leadstore: read failed, starting empty",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		return nil
	}

	var records []model.LeadRecord
	if err := json.Unmarshal(data, &records); err != nil {
		zap.L().Warn("leadstore: corrupt store file, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil
	}
	return records
}

// Upsert mutates the record for leadID in place, or appends a new record
// with placeholder identity fields when the lead is unknown.
func (s *Local) Upsert(_ context.Context, leadID string, doc *model.BriefingDocument) error {
	briefingJSON, err := serializeBriefing(doc)
	if err != nil {
		return err
	}

	records := s.load()
	now := time.Now().UTC()

	found := false
	for i := range records {
		if records[i].LeadID == leadID {
			records[i].Briefing = briefingJSON
			records[i].Status = model.LeadStatusBriefingGenerated
			records[i].LastUpdatedAt = now
			found = true
			zap.L().Info("leadstore: updated existing lead",
				zap.String("lead_id", leadID),
				zap.String("name", records[i].DisplayName),
			)
			break
		}
	}
	if !found {
		records = append(records, model.LeadRecord{
			LeadID:        leadID,
			DisplayName:   "Unknown Lead",
			CompanyName:   "Unknown Company",
			Briefing:      briefingJSON,
			Status:        model.LeadStatusBriefingGenerated,
			CreatedAt:     now,
			LastUpdatedAt: now,
		})
		zap.L().Info("leadstore: created new lead record", zap.String("lead_id", leadID))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "leadstore: marshal records")
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return eris.Wrapf(err, "leadstore: write %s", s.path)
	}

	zap.L().Debug("leadstore: store written",
		zap.String("path", s.path),
		zap.Int("total_leads", len(records)),
	)
	return nil
}

// List returns all stored lead records. An absent store file is an empty
// collection, not an error.
func (s *Local) List(_ context.Context) ([]model.LeadRecord, error) {
	return s.load(), nil
}
