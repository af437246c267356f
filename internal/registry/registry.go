// Package registry holds the ad-context collection consulted during briefing
// synthesis. Contexts are loaded once at startup, from a JSON fixture or a
// Notion database, and looked up per request by context ID.
package registry

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-cli/internal/model"
)

// keyField is the record field that identifies a context.
const keyField = "context_id"

// ErrNotFound is returned by Lookup when no record matches the context ID.
// Callers treat it as non-fatal: synthesis proceeds with an empty context.
var ErrNotFound = eris.New("context not found")

// Registry is an in-memory collection of context records.
type Registry struct {
	records []model.ContextRecord
}

// NewRegistry creates a Registry over the given records.
func NewRegistry(records []model.ContextRecord) *Registry {
	return &Registry{records: records}
}

// Len reports the number of loaded context records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Lookup scans for the record whose context_id field equals id. On a miss it
// returns an empty record and an ErrNotFound-wrapped error.
func (r *Registry) Lookup(id string) (model.ContextRecord, error) {
	for _, rec := range r.records {
		if contextID(rec) == id {
			return rec, nil
		}
	}
	return model.ContextRecord{}, eris.Wrapf(ErrNotFound, "registry: context ID %q", id)
}

// contextID extracts the identifying field from a record, or "" when absent.
func contextID(rec model.ContextRecord) string {
	v, ok := rec[keyField]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
