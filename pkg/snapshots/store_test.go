package snapshots

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeResults(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	return path
}

func TestLoadResults_MissingFileIsEmpty(t *testing.T) {
	results, err := LoadResults(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLoadResults_EmptyPathIsEmpty(t *testing.T) {
	results, err := LoadResults("")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLoadResults_ValidEntries(t *testing.T) {
	path := writeResults(t, `[
		{"query_id": "txn_subsidiary_volume", "collected_at": "2026-08-01T00:00:00Z", "row_count": 1,
		 "rows": [{"subsidiary_name": "Acme US", "transaction_count": 120}]},
		{"query_id": "config_currencies", "collected_at": "2026-08-01T00:00:00Z", "row_count": 2,
		 "rows": [{"symbol": "USD", "isbasecurrency": "T"}, {"symbol": "EUR", "isbasecurrency": "F"}]}
	]`)

	results, err := LoadResults(path)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results["txn_subsidiary_volume"].RowCount)
	assert.Len(t, results["config_currencies"].Rows, 2)
}

func TestLoadResults_SkipsMalformedEntries(t *testing.T) {
	path := writeResults(t, `[
		{"query_id": "good", "collected_at": "2026-08-01T00:00:00Z", "row_count": 0, "rows": []},
		{"query_id": "", "collected_at": "2026-08-01T00:00:00Z", "row_count": 0, "rows": []},
		{"query_id": "no_rows", "collected_at": "2026-08-01T00:00:00Z", "row_count": 0},
		{"query_id": "no_timestamp", "row_count": 0, "rows": []},
		"not an object"
	]`)

	results, err := LoadResults(path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results, "good")
}

func TestLoadResults_BadTopLevelJSONIsError(t *testing.T) {
	path := writeResults(t, `{"not": "an array"}`)
	_, err := LoadResults(path)
	require.Error(t, err)
}

func TestQueryDefinitions_CoverDefaultRules(t *testing.T) {
	ids := make(map[string]bool, len(QueryDefinitions))
	for _, def := range QueryDefinitions {
		ids[def.QueryID] = true
	}
	for _, required := range []string{
		QuerySubsidiaryVolume,
		QueryDepartmentLocation,
		QueryChartOfAccounts,
		QueryCurrencies,
		QueryStatusDistribution,
		QueryTypeUsage,
		QueryRolesPermissions,
	} {
		assert.True(t, ids[required], "missing definition for %s", required)
	}
}
