package registry

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-cli/internal/model"
)

// LoadContextsFromFile reads a JSON array of context records from the given
// path. Each record must carry a context_id field to be reachable by Lookup.
func LoadContextsFromFile(path string) ([]model.ContextRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read contexts fixture")
	}

	var records []model.ContextRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal contexts fixture")
	}

	return records, nil
}
