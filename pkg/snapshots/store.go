// Package snapshots loads the cached aggregate reference-query results used
// to propose clarification defaults. The snapshots are produced by an
// external batch job; this package only reads the cache and is tolerant of
// partial or malformed entries since defaults are advisory.
package snapshots

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hintlane/clarify-engine/pkg/models"
)

// LoadResults reads the cached reference-query results from path. A missing
// file yields an empty map. Entries that fail schema validation are skipped
// so a partial cache still loads.
func LoadResults(path string) (map[string]models.ReferenceQueryResult, error) {
	results := make(map[string]models.ReferenceQueryResult)
	if path == "" {
		return results, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return results, nil
		}
		return nil, fmt.Errorf("failed to read snapshot results from %s: %w", path, err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot results from %s: %w", path, err)
	}

	for _, raw := range entries {
		var result models.ReferenceQueryResult
		if err := json.Unmarshal(raw, &result); err != nil {
			continue
		}
		if result.QueryID == "" || result.CollectedAt == "" || result.Rows == nil {
			continue
		}
		results[result.QueryID] = result
	}

	return results, nil
}
