package models

// ReferenceQueryDefinition describes one curated aggregate query whose cached
// results feed default suggestions. The queries themselves are executed by an
// external batch job; this service only consumes their cached results.
type ReferenceQueryDefinition struct {
	QueryID     string `json:"query_id"`
	Section     string `json:"section"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SQL         string `json:"sql"`
}

// ReferenceQueryResult is one cached aggregate result set.
type ReferenceQueryResult struct {
	QueryID     string           `json:"query_id"`
	CollectedAt string           `json:"collected_at"`
	RowCount    int              `json:"row_count"`
	Rows        []map[string]any `json:"rows"`
}

// CatalogListing is the read-only introspection payload for the compiled
// reference-query definitions and their cached results.
type CatalogListing struct {
	Definitions []ReferenceQueryDefinition      `json:"definitions"`
	Results     map[string]ReferenceQueryResult `json:"results"`
}
