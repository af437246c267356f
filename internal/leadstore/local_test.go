package leadstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/briefing-cli/internal/model"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "leads_db.json")
}

func TestLocalUpsert_CreatesFileWhenAbsent(t *testing.T) {
	path := tempStorePath(t)
	store := NewLocal(path)

	err := store.Upsert(context.Background(), "lead_001", sampleDoc())
	require.NoError(t, err)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "lead_001", rec.LeadID)
	assert.Equal(t, "Unknown Lead", rec.DisplayName)
	assert.Equal(t, "Unknown Company", rec.CompanyName)
	assert.Equal(t, model.LeadStatusBriefingGenerated, rec.Status)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.True(t, rec.HasBriefing())
}

func TestLocalUpsert_UpdatesExistingInPlace(t *testing.T) {
	path := tempStorePath(t)
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	seed := []model.LeadRecord{{
		LeadID:        "lead_001",
		DisplayName:   "Jordan Smith",
		CompanyName:   "Acme Corp",
		Status:        model.LeadStatusNew,
		CreatedAt:     created,
		LastUpdatedAt: created,
	}}
	data, err := json.Marshal(seed)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	store := NewLocal(path)
	require.NoError(t, store.Upsert(context.Background(), "lead_001", sampleDoc()))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	// Identity survives; briefing, status, and timestamp move.
	assert.Equal(t, "Jordan Smith", rec.DisplayName)
	assert.Equal(t, "Acme Corp", rec.CompanyName)
	assert.Equal(t, model.LeadStatusBriefingGenerated, rec.Status)
	assert.True(t, rec.HasBriefing())
	assert.Equal(t, created, rec.CreatedAt)
	assert.True(t, rec.LastUpdatedAt.After(created))
}

func TestLocalUpsert_Idempotent(t *testing.T) {
	path := tempStorePath(t)
	store := NewLocal(path)

	first := sampleDoc()
	require.NoError(t, store.Upsert(context.Background(), "lead_001", first))

	second := sampleDoc()
	second.CompanyProfile = "Updated profile after second run."
	require.NoError(t, store.Upsert(context.Background(), "lead_001", second))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Briefing, "Updated profile after second run.")
}

func TestLocalUpsert_CorruptFileStartsEmpty(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewLocal(path)
	require.NoError(t, store.Upsert(context.Background(), "lead_001", sampleDoc()))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLocalUpsert_StoredBriefingOmitsErrorTag(t *testing.T) {
	path := tempStorePath(t)
	store := NewLocal(path)

	doc := sampleDoc()
	doc.Error = "model call failed"
	require.NoError(t, store.Upsert(context.Background(), "lead_001", doc))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotContains(t, records[0].Briefing, "model call failed")
	assert.NotContains(t, records[0].Briefing, `"error"`)
}

func TestLocalList_AbsentFile(t *testing.T) {
	store := NewLocal(tempStorePath(t))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLocalStore_BriefingRoundTrip(t *testing.T) {
	path := tempStorePath(t)
	store := NewLocal(path)

	original := sampleDoc()
	require.NoError(t, store.Upsert(context.Background(), "lead_rt", original))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	var got model.BriefingDocument
	require.NoError(t, json.Unmarshal([]byte(records[0].Briefing), &got))

	assert.Equal(t, original.CompanyProfile, got.CompanyProfile)
	assert.Equal(t, original.KeyUpdates, got.KeyUpdates)
	assert.Equal(t, original.LeadAngle, got.LeadAngle)
	assert.Equal(t, original.ConversationStarters, got.ConversationStarters)
	assert.Equal(t, original.PotentialObjections, got.PotentialObjections)
}
