// Package catalog compiles the curated clarification catalog into an
// immutable in-memory dataset. The primary source is a tabular CSV (one row
// per known question pattern); an optional keyed JSON source contributes
// previously sampled result values that win over static catalog options.
package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hintlane/clarify-engine/pkg/apperrors"
	"github.com/hintlane/clarify-engine/pkg/jsonutil"
	"github.com/hintlane/clarify-engine/pkg/models"
	"github.com/hintlane/clarify-engine/pkg/textmatch"
)

// Column names expected in the tabular catalog source.
const (
	colQuestionID            = "Question ID"
	colModule                = "Module"
	colUserQuestion          = "User Question"
	colClarificationQuestion = "Clarification Question"
	colQueryID               = "Query ID"
	colLiveLookupField       = "Live Lookup Field"
	colSQLQuery              = "SQL Query"
	colSelectorType          = "Selector Type"
	colAvailableOptions      = "Available Options"
	colJSONItems             = "JSON Items"
	colJSONStatus            = "JSON Status"
	colJSONRowCount          = "JSON Row Count"
	colJSONError             = "JSON Error"
	colJSONDetails           = "JSON Details"
)

// multiSelectStyles maps raw selector labels to multi-select styles.
var multiSelectStyles = map[string]string{
	"Checkbox Multi-Select":   "checkbox",
	"Dropdown Multi-Select":   "dropdown",
	"Scrollable Multi-Select": "list",
}

// contextKeywords maps substrings of catalog text to normalized context tags.
// The keys are substrings on purpose: "subsidi" catches both "subsidiary"
// and "subsidiaries".
var contextKeywords = map[string]string{
	"subsidi":    "subsidiary",
	"account":    "account",
	"department": "department",
	"location":   "location",
	"vendor":     "vendor",
	"customer":   "customer",
	"period":     "period",
	"date":       "date",
	"currency":   "currency",
	"status":     "status",
	"role":       "role",
	"permission": "permissions",
	"employee":   "employee",
	"class":      "class",
	"type":       "type",
	"book":       "accounting_book",
}

// Compile builds the clarification dataset from the tabular catalog at
// csvPath and the optional sample results at samplesPath. It is deterministic
// for identical inputs. A missing or unreadable CSV, or a row without a
// question id, aborts the whole compile; a missing samples file does not.
func Compile(csvPath, samplesPath string) (*models.ClarificationDataset, error) {
	samples, err := loadSamples(samplesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load sample results from %s: %w", samplesPath, err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog source %s: %w", csvPath, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header from %s: %w", csvPath, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns[colQuestionID]; !ok {
		return nil, fmt.Errorf("catalog source %s: %w", csvPath, apperrors.ErrMissingQuestionID)
	}

	dataset := &models.ClarificationDataset{
		Clarifications: make(map[string]*models.ClarificationRecord),
		SourceCSV:      csvPath,
		SourceJSON:     samplesPath,
		GeneratedAt:    time.Now().UTC(),
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog rows from %s: %w", csvPath, err)
	}

	for i, row := range rows {
		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}

		questionID := strings.TrimSpace(field(colQuestionID))
		if questionID == "" {
			return nil, fmt.Errorf("catalog row %d: %w", i+2, apperrors.ErrMissingQuestionID)
		}

		record := compileRow(questionID, field, samples[questionID])
		if _, seen := dataset.Clarifications[questionID]; !seen {
			dataset.Order = append(dataset.Order, questionID)
		}
		dataset.Clarifications[questionID] = record
	}

	return dataset, nil
}

// compileRow derives one record from a catalog row plus its optional sample.
func compileRow(questionID string, field func(string) string, sample *sampleResult) *models.ClarificationRecord {
	selector := normalizeSelector(field(colSelectorType))

	availableOptions := splitOptions(field(colAvailableOptions))
	options := parseOptions(field(colJSONItems), availableOptions)

	var payload *models.SamplePayload
	if sample != nil {
		payload = &models.SamplePayload{
			RowCount: sample.RowCount,
			Items:    sample.options(),
		}
		// Sampled items are live data and win over the static catalog
		// options, except for records that never render a selector.
		if len(payload.Items) > 0 && selector.Kind != models.SelectorNone {
			options = payload.Items
		}
	}

	record := &models.ClarificationRecord{
		QuestionID:            questionID,
		Module:                strings.TrimSpace(field(colModule)),
		UserQuestion:          strings.TrimSpace(field(colUserQuestion)),
		ClarificationQuestion: strings.TrimSpace(field(colClarificationQuestion)),
		QueryID:               strings.TrimSpace(field(colQueryID)),
		LiveLookupField:       strings.TrimSpace(field(colLiveLookupField)),
		SQLQuery:              strings.TrimSpace(field(colSQLQuery)),
		Selector:              selector,
		Options:               options,
		AvailableOptions:      availableOptions,
		JSONStatus:            strings.TrimSpace(field(colJSONStatus)),
		JSONError:             strings.TrimSpace(field(colJSONError)),
		SamplePayload:         payload,
	}

	if raw := strings.TrimSpace(field(colJSONRowCount)); raw != "" {
		if count, err := strconv.Atoi(raw); err == nil {
			record.JSONRowCount = &count
		}
	}

	if cleaned := cleanJSONField(field(colJSONDetails)); cleaned != "" {
		var details map[string]any
		if err := json.Unmarshal([]byte(cleaned), &details); err != nil {
			details = map[string]any{"raw": field(colJSONDetails)}
		}
		record.JSONDetails = details
	}

	record.KeywordHints = deriveKeywords(
		field(colClarificationQuestion),
		field(colLiveLookupField),
		field(colQueryID),
		strings.Join(availableOptions, " "),
	)
	record.ContextTags = deriveContextTags(
		field(colClarificationQuestion),
		field(colLiveLookupField),
		field(colQueryID),
	)

	return record
}

// normalizeSelector maps a raw selector label to selector metadata via the
// fixed lookup table. Unseen labels become a generic single-select dropdown.
func normalizeSelector(raw string) models.SelectorMetadata {
	trimmed := strings.TrimSpace(raw)
	if style, ok := multiSelectStyles[trimmed]; ok {
		return models.SelectorMetadata{Kind: models.SelectorMultiSelect, Style: style, Raw: trimmed}
	}
	switch strings.ToLower(trimmed) {
	case "radio buttons":
		return models.SelectorMetadata{Kind: models.SelectorSingleSelect, Style: "radio", Raw: trimmed}
	case "not applicable":
		return models.SelectorMetadata{Kind: models.SelectorNone, Raw: trimmed}
	}
	return models.SelectorMetadata{Kind: models.SelectorSingleSelect, Style: "dropdown", Raw: trimmed}
}

// cleanJSONField strips CSV-style quoting from an embedded JSON field.
func cleanJSONField(value string) string {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return ""
	}
	if strings.HasPrefix(cleaned, `"`) && strings.HasSuffix(cleaned, `"`) {
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	return strings.ReplaceAll(cleaned, `""`, `"`)
}

// splitOptions parses the comma-separated fallback option list.
func splitOptions(raw string) []string {
	var options []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			options = append(options, trimmed)
		}
	}
	return options
}

// optionItem is the raw JSON shape for one rich option. Values may arrive as
// numbers or booleans, so they decode through jsonutil.
type optionItem struct {
	Value        json.RawMessage `json:"value"`
	DisplayValue json.RawMessage `json:"display_value"`
	Links        []string        `json:"links"`
}

func (o optionItem) toOption() models.ClarificationOption {
	value := strings.TrimSpace(jsonutil.FlexibleStringValue(o.Value))
	display := strings.TrimSpace(jsonutil.FlexibleStringValue(o.DisplayValue))
	if display == "" {
		display = value
	}
	return models.ClarificationOption{Value: value, DisplayValue: display, Links: o.Links}
}

// parseOptions decodes the JSON-encoded option list, falling back to the
// comma-separated list when the JSON is empty, malformed, or yields nothing.
func parseOptions(rawJSON string, fallback []string) []models.ClarificationOption {
	fromFallback := func() []models.ClarificationOption {
		options := make([]models.ClarificationOption, 0, len(fallback))
		for _, opt := range fallback {
			options = append(options, models.ClarificationOption{Value: opt, DisplayValue: opt})
		}
		return options
	}

	cleaned := cleanJSONField(rawJSON)
	if cleaned == "" {
		return fromFallback()
	}

	var items []optionItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return fromFallback()
	}

	options := make([]models.ClarificationOption, 0, len(items))
	for _, item := range items {
		options = append(options, item.toOption())
	}
	if len(options) == 0 {
		return fromFallback()
	}
	return options
}

// deriveKeywords tokenizes the snippets and returns the sorted unique tokens.
func deriveKeywords(snippets ...string) []string {
	seen := make(map[string]struct{})
	for _, snippet := range snippets {
		for _, token := range textmatch.Tokenize(snippet) {
			seen[token] = struct{}{}
		}
	}
	keywords := make([]string, 0, len(seen))
	for token := range seen {
		keywords = append(keywords, token)
	}
	sort.Strings(keywords)
	return keywords
}

// deriveContextTags returns the sorted context tags whose trigger substring
// occurs anywhere in the joined snippets.
func deriveContextTags(snippets ...string) []string {
	lowered := strings.ToLower(strings.Join(snippets, " "))
	seen := make(map[string]struct{})
	for key, tag := range contextKeywords {
		if strings.Contains(lowered, key) {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
