package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hintlane/clarify-engine/pkg/models"
	"github.com/hintlane/clarify-engine/pkg/snapshots"
	"github.com/hintlane/clarify-engine/pkg/textmatch"
)

// Candidate scoring constants. A record only becomes a candidate when its
// summed score reaches scoreThreshold; at most maxCandidates survive ranking.
const (
	moduleHintScore     = 4
	keywordHitScore     = 2
	contextHitScore     = 1
	optionHitScore      = 3
	similarityThreshold = 0.45
	scoreThreshold      = 5
	maxCandidates       = 10
)

// DatasetLoader produces a freshly compiled clarification dataset.
type DatasetLoader func() (*models.ClarificationDataset, error)

// ResultsLoader produces the cached reference-query results.
type ResultsLoader func() (map[string]models.ReferenceQueryResult, error)

// ClarifyEngine runs deterministic, syntactic matching of free-text queries
// against the compiled clarification catalog. The dataset and snapshot
// results are swapped atomically on refresh so concurrent evaluations see
// either the old or the new state in full, never a mixture.
type ClarifyEngine struct {
	loadDataset DatasetLoader
	loadResults ResultsLoader
	logger      *zap.Logger

	mu           sync.RWMutex
	dataset      *models.ClarificationDataset
	results      map[string]models.ReferenceQueryResult
	recordTokens map[string][]string
}

// NewClarifyEngine builds an engine and performs the initial load. A failed
// catalog compile is fatal here; there is no previous dataset to fall back to.
func NewClarifyEngine(loadDataset DatasetLoader, loadResults ResultsLoader, logger *zap.Logger) (*ClarifyEngine, error) {
	engine := &ClarifyEngine{
		loadDataset: loadDataset,
		loadResults: loadResults,
		logger:      logger,
	}
	if err := engine.Refresh(); err != nil {
		return nil, err
	}
	return engine, nil
}

// Refresh rebuilds the dataset and snapshot results from their sources and
// swaps them in atomically. On failure the previous state stays active.
func (e *ClarifyEngine) Refresh() error {
	dataset, err := e.loadDataset()
	if err != nil {
		return fmt.Errorf("catalog compile failed: %w", err)
	}
	results, err := e.loadResults()
	if err != nil {
		return fmt.Errorf("snapshot load failed: %w", err)
	}

	// Exemplar-question tokens are derived once per dataset so candidate
	// scoring does not re-tokenize the catalog on every evaluation.
	recordTokens := make(map[string][]string, len(dataset.Clarifications))
	for id, record := range dataset.Clarifications {
		recordTokens[id] = textmatch.Tokenize(record.UserQuestion)
	}

	e.mu.Lock()
	e.dataset = dataset
	e.results = results
	e.recordTokens = recordTokens
	e.mu.Unlock()

	e.logger.Info("clarification catalog refreshed",
		zap.Int("records", len(dataset.Clarifications)),
		zap.Int("snapshot_results", len(results)),
	)
	return nil
}

// Dataset returns the current immutable dataset snapshot.
func (e *ClarifyEngine) Dataset() *models.ClarificationDataset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dataset
}

// Results returns the current cached reference-query results.
func (e *ClarifyEngine) Results() map[string]models.ReferenceQueryResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.results
}

// ContextTagsFor returns the context tags of a record, or nil when unknown.
func (e *ClarifyEngine) ContextTagsFor(questionID string) []string {
	record := e.Dataset().Get(questionID)
	if record == nil {
		return nil
	}
	return record.ContextTags
}

// scoredRecord pairs a candidate with its summed heuristic score.
type scoredRecord struct {
	score  int
	record *models.ClarificationRecord
}

// Evaluate scores every catalog record against the request, selects the best
// candidates, decides which are already satisfied, and returns the ordered
// suggestion list plus the auto-applied context map.
func (e *ClarifyEngine) Evaluate(req models.ClarificationRequest) models.ClarificationResponse {
	e.mu.RLock()
	dataset := e.dataset
	results := e.results
	recordTokens := e.recordTokens
	e.mu.RUnlock()

	candidates := scoreCandidates(dataset, recordTokens, req)

	response := models.ClarificationResponse{
		UserQuery:          req.UserQuery,
		SessionID:          req.SessionID,
		Suggestions:        []models.ClarificationSuggestion{},
		AutoApplied:        map[string]string{},
		MatchedQuestionIDs: []string{},
		EvaluatedAt:        time.Now().UTC(),
	}

	type dedupeKey struct {
		kind models.SelectorKind
		tags string
	}
	seen := make(map[dedupeKey]struct{})

	for _, candidate := range candidates {
		record := candidate.record
		response.MatchedQuestionIDs = append(response.MatchedQuestionIDs, record.QuestionID)

		defaults := suggestDefaults(record, results)

		contextKey := record.QueryID
		if len(record.ContextTags) > 0 {
			contextKey = record.ContextTags[0]
		}

		if contextSatisfied(record, req.UserQuery, defaults, req.AlreadyProvided) {
			// A satisfied record never becomes a suggestion. It only
			// contributes an auto-applied value when a default was
			// computable for its leading context tag.
			if contextKey != "" && defaults[contextKey] != "" {
				response.AutoApplied[contextKey] = defaults[contextKey]
			}
			continue
		}

		if record.Selector.Kind == models.SelectorNone {
			for _, tag := range record.ContextTags {
				if value, ok := defaults[tag]; ok {
					response.AutoApplied[tag] = value
				}
			}
			continue
		}

		sortedTags := append([]string(nil), record.ContextTags...)
		sort.Strings(sortedTags)
		key := dedupeKey{kind: record.Selector.Kind, tags: strings.Join(sortedTags, ",")}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		response.Suggestions = append(response.Suggestions, models.ClarificationSuggestion{
			QuestionID:            record.QuestionID,
			ClarificationQuestion: record.ClarificationQuestion,
			Selector:              record.Selector,
			Options:               record.Options,
			DefaultsApplied:       defaults,
			ContextTags:           record.ContextTags,
			Reason:                buildReason(record, defaults),
		})
	}

	return response
}

// scoreCandidates applies the weighted scoring heuristics to every record
// and returns the top candidates, highest score first. The sort is stable so
// ties keep catalog iteration order.
func scoreCandidates(dataset *models.ClarificationDataset, recordTokens map[string][]string, req models.ClarificationRequest) []scoredRecord {
	queryTokens := textmatch.Tokenize(req.UserQuery)
	loweredQuery := strings.ToLower(req.UserQuery)
	moduleHint := strings.ToLower(req.ModuleHint)

	tokenSet := make(map[string]struct{}, len(queryTokens))
	for _, tok := range queryTokens {
		tokenSet[tok] = struct{}{}
	}

	var scored []scoredRecord
	for _, record := range dataset.Records() {
		score := 0

		if moduleHint != "" && strings.Contains(strings.ToLower(record.Module), moduleHint) {
			score += moduleHintScore
		}

		similarity := textmatch.SequenceRatio(strings.ToLower(record.UserQuestion), loweredQuery)
		if similarity > similarityThreshold {
			score += int(similarity * 10)
		}

		for _, hint := range record.KeywordHints {
			if _, ok := tokenSet[hint]; ok {
				score += keywordHitScore
			}
		}

		for _, tag := range record.ContextTags {
			if _, ok := tokenSet[tag]; ok {
				score += contextHitScore
			}
		}

		score += optionHits(record, loweredQuery)

		overlap := textmatch.TokenSetRatio(queryTokens, recordTokens[record.QuestionID])
		score += int(overlap * 10)

		if score >= scoreThreshold {
			scored = append(scored, scoredRecord{score: score, record: record})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > maxCandidates {
		scored = scored[:maxCandidates]
	}
	return scored
}

// optionHits counts record options whose value or display text appears as a
// substring of the lower-cased query. Texts shorter than two characters are
// ignored; a single letter like an "A"/"B" option value matches almost any
// sentence and would mark the record satisfied spuriously.
func optionHits(record *models.ClarificationRecord, loweredQuery string) int {
	hits := 0
	for _, option := range record.Options {
		display := strings.ToLower(option.DisplayValue)
		value := strings.ToLower(option.Value)
		if (len(display) > 1 && strings.Contains(loweredQuery, display)) ||
			(len(value) > 1 && strings.Contains(loweredQuery, value)) {
			hits += optionHitScore
		}
	}
	return hits
}

// contextSatisfied reports whether the record's clarification is already
// answered implicitly: a context tag is in the provided map, a computed
// default's text occurs in the query, or an option text occurs in the query.
func contextSatisfied(record *models.ClarificationRecord, userQuery string, defaults, provided map[string]string) bool {
	lowered := strings.ToLower(userQuery)
	for _, tag := range record.ContextTags {
		if _, ok := provided[tag]; ok {
			return true
		}
		if value := defaults[tag]; value != "" && strings.Contains(lowered, strings.ToLower(value)) {
			return true
		}
	}
	return optionHits(record, lowered) > 0
}

// buildReason renders the human-readable explanation attached to a
// suggestion. Defaults are listed in context-tag order for determinism.
func buildReason(record *models.ClarificationRecord, defaults map[string]string) string {
	if len(defaults) > 0 {
		pairs := make([]string, 0, len(defaults))
		for _, tag := range record.ContextTags {
			if value, ok := defaults[tag]; ok {
				pairs = append(pairs, tag+"="+value)
			}
		}
		return fmt.Sprintf("Default suggestion available (%s).", strings.Join(pairs, ", "))
	}
	return "Matches module and keyword patterns from the curated catalog."
}

// suggestDefaults computes a proposed default per context tag.
func suggestDefaults(record *models.ClarificationRecord, results map[string]models.ReferenceQueryResult) map[string]string {
	defaults := make(map[string]string)
	for _, tag := range record.ContextTags {
		if value := defaultForTag(tag, record, results); value != "" {
			defaults[tag] = value
		}
	}
	return defaults
}

// defaultForTag resolves the tag-specific default rule against the cached
// reference snapshots, falling back to the record's own options. With no
// snapshots loaded at all, no default is proposed; the cache is advisory and
// an empty cache means the deployment has produced no aggregates yet.
func defaultForTag(tag string, record *models.ClarificationRecord, results map[string]models.ReferenceQueryResult) string {
	if len(results) == 0 {
		return ""
	}

	switch tag {
	case "subsidiary":
		if rows := results[snapshots.QuerySubsidiaryVolume].Rows; len(rows) > 0 {
			top := maxRowBy(rows, "transaction_count")
			if name := firstRowString(top, "subsidiary_name", "subsidiary"); name != "" {
				return name
			}
		}
	case "department", "location":
		if rows := results[snapshots.QueryDepartmentLocation].Rows; len(rows) > 0 {
			top := maxRowBy(rows, "transaction_count")
			if name := firstRowString(top, tag); name != "" {
				return name
			}
		}
	case "account":
		for _, row := range results[snapshots.QueryChartOfAccounts].Rows {
			if acctType := firstRowString(row, "accttype"); acctType != "" {
				return acctType
			}
		}
	case "currency":
		for _, row := range results[snapshots.QueryCurrencies].Rows {
			if firstRowString(row, "isbasecurrency") == "T" {
				if symbol := firstRowString(row, "symbol", "name"); symbol != "" {
					return symbol
				}
				break
			}
		}
	case "status":
		if rows := results[snapshots.QueryStatusDistribution].Rows; len(rows) > 0 {
			top := maxRowBy(rows, "count")
			if status := firstRowString(top, "status"); status != "" {
				return status
			}
		}
	case "type":
		if rows := results[snapshots.QueryTypeUsage].Rows; len(rows) > 0 {
			top := maxRowBy(rows, "usage_count")
			if typeName := firstRowString(top, "type"); typeName != "" {
				return typeName
			}
		}
	case "role":
		if rows := results[snapshots.QueryRolesPermissions].Rows; len(rows) > 0 {
			top := maxRowBy(rows, "employee_count")
			if role := firstRowString(top, "name"); role != "" {
				return role
			}
		}
	}

	if len(record.AvailableOptions) > 0 {
		return record.AvailableOptions[0]
	}
	if len(record.Options) > 0 {
		return record.Options[0].DisplayValue
	}
	return ""
}

// maxRowBy returns the row with the highest numeric value under key. The
// first maximal row wins so snapshot ordering stays meaningful.
func maxRowBy(rows []map[string]any, key string) map[string]any {
	var top map[string]any
	best := 0.0
	for _, row := range rows {
		value := rowNumber(row, key)
		if top == nil || value > best {
			top = row
			best = value
		}
	}
	return top
}

// rowNumber extracts a numeric cell, tolerating JSON numbers and numeric
// strings. Anything else counts as zero.
func rowNumber(row map[string]any, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(v, "%g", &parsed); err == nil {
			return parsed
		}
	}
	return 0
}

// firstRowString returns the first non-empty string cell among keys.
func firstRowString(row map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := row[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v))
			}
			return fmt.Sprintf("%g", v)
		}
	}
	return ""
}
