package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadContextsFromFile(t *testing.T) {
	fixture := `[
		{"context_id": "ad_001_pos", "title": "Modern Cloud POS System", "pain_points": ["slow checkout"]},
		{"context_id": "ad_002_ecommerce", "title": "Complete E-commerce Solution"}
	]`

	path := filepath.Join(t.TempDir(), "contexts.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	got, err := LoadContextsFromFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "ad_001_pos", got[0]["context_id"])
	points, ok := got[0]["pain_points"].([]any)
	require.True(t, ok, "pain_points should unmarshal as a list")
	assert.Len(t, points, 1)
}

func TestLoadContextsFromFile_NotFound(t *testing.T) {
	_, err := LoadContextsFromFile("/nonexistent/contexts.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read contexts fixture")
}

func TestLoadContextsFromFile_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o644))

	_, err := LoadContextsFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal contexts fixture")
}

// TestLoadContexts_RealFile loads the shipped fixture to verify its format.
func TestLoadContexts_RealFile(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "contexts.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("testdata/contexts.json not found, skipping")
	}

	records, err := LoadContextsFromFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	// Every record must be reachable by Lookup.
	r := NewRegistry(records)
	for _, rec := range records {
		id := contextID(rec)
		require.NotEmpty(t, id, "fixture record missing context_id: %v", rec)

		_, err := r.Lookup(id)
		assert.NoError(t, err, "Lookup(%q)", id)
	}
}
