package models

import "time"

// ============================================================================
// Selector Metadata
// ============================================================================

// SelectorKind describes how a clarification is answered in the UI.
type SelectorKind string

const (
	SelectorSingleSelect SelectorKind = "single_select"
	SelectorMultiSelect  SelectorKind = "multi_select"
	SelectorNone         SelectorKind = "none"
)

// SelectorMetadata is derived once at catalog compile time from the raw
// selector-type label carried by the catalog row.
type SelectorMetadata struct {
	Kind  SelectorKind `json:"kind"`
	Style string       `json:"style,omitempty"`
	Raw   string       `json:"raw,omitempty"`
}

// ============================================================================
// Catalog Records
// ============================================================================

// ClarificationOption is one selectable answer for a clarification.
// Options are immutable once compiled for a catalog version.
type ClarificationOption struct {
	Value        string   `json:"value"`
	DisplayValue string   `json:"display_value"`
	Links        []string `json:"links,omitempty"`
}

// SamplePayload carries the sampled result attached to a record when the
// secondary sample source has live data for its question id.
type SamplePayload struct {
	RowCount int                   `json:"row_count"`
	Items    []ClarificationOption `json:"items,omitempty"`
}

// ClarificationRecord is one compiled catalog entry, keyed by question id.
type ClarificationRecord struct {
	QuestionID            string                `json:"question_id"`
	Module                string                `json:"module"`
	UserQuestion          string                `json:"user_question"`
	ClarificationQuestion string                `json:"clarification_question"`
	QueryID               string                `json:"query_id,omitempty"`
	LiveLookupField       string                `json:"live_lookup_field,omitempty"`
	SQLQuery              string                `json:"sql_query,omitempty"`
	Selector              SelectorMetadata      `json:"selector"`
	Options               []ClarificationOption `json:"options,omitempty"`
	AvailableOptions      []string              `json:"available_options,omitempty"`
	JSONStatus            string                `json:"json_status,omitempty"`
	JSONRowCount          *int                  `json:"json_row_count,omitempty"`
	JSONError             string                `json:"json_error,omitempty"`
	JSONDetails           map[string]any        `json:"json_details,omitempty"`
	KeywordHints          []string              `json:"keyword_hints,omitempty"`
	ContextTags           []string              `json:"context_tags,omitempty"`
	SamplePayload         *SamplePayload        `json:"sample_payload,omitempty"`
}

// ClarificationDataset is the immutable compiled catalog snapshot. It is
// replaced wholesale on refresh, never mutated in place.
type ClarificationDataset struct {
	Clarifications map[string]*ClarificationRecord `json:"clarifications"`
	// Order preserves catalog iteration order so tie-breaking during
	// candidate ranking stays stable across evaluations.
	Order       []string  `json:"order"`
	SourceCSV   string    `json:"source_csv"`
	SourceJSON  string    `json:"source_json"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Get returns the record for a question id, or nil when unknown.
func (d *ClarificationDataset) Get(questionID string) *ClarificationRecord {
	if d == nil {
		return nil
	}
	return d.Clarifications[questionID]
}

// Records returns all records in catalog iteration order.
func (d *ClarificationDataset) Records() []*ClarificationRecord {
	records := make([]*ClarificationRecord, 0, len(d.Order))
	for _, id := range d.Order {
		if rec, ok := d.Clarifications[id]; ok {
			records = append(records, rec)
		}
	}
	return records
}

// ============================================================================
// Evaluation
// ============================================================================

// ClarificationRequest is the input to one matching-engine evaluation.
type ClarificationRequest struct {
	UserQuery       string            `json:"user_query"`
	ModuleHint      string            `json:"module_hint,omitempty"`
	SessionID       string            `json:"session_id,omitempty"`
	AlreadyProvided map[string]string `json:"already_provided,omitempty"`
}

// ClarificationSuggestion is the externally visible unit offered to a user.
type ClarificationSuggestion struct {
	QuestionID            string                `json:"question_id"`
	ClarificationQuestion string                `json:"clarification_question"`
	Selector              SelectorMetadata      `json:"selector"`
	Options               []ClarificationOption `json:"options,omitempty"`
	DefaultsApplied       map[string]string     `json:"defaults_applied,omitempty"`
	ContextTags           []string              `json:"context_tags,omitempty"`
	Reason                string                `json:"reason"`
}

// ClarificationResponse is the result of one matching-engine evaluation.
type ClarificationResponse struct {
	UserQuery          string                    `json:"user_query"`
	SessionID          string                    `json:"session_id,omitempty"`
	Suggestions        []ClarificationSuggestion `json:"suggestions"`
	AutoApplied        map[string]string         `json:"auto_applied"`
	EvaluatedAt        time.Time                 `json:"evaluated_at"`
	MatchedQuestionIDs []string                  `json:"matched_question_ids"`
}

// ============================================================================
// Answers & Session Projection
// ============================================================================

// ClarificationAnswer is one user-submitted answer for a pending question.
type ClarificationAnswer struct {
	QuestionID     string   `json:"question_id"`
	SelectedValues []string `json:"selected_values"`
}

// AnswerRequest is the payload for submitting answers to a session.
type AnswerRequest struct {
	SessionID      string                `json:"session_id"`
	Answers        []ClarificationAnswer `json:"answers"`
	AcceptDefaults bool                  `json:"accept_defaults,omitempty"`
}

// SessionStatus is derived from the pending list, never stored.
type SessionStatus string

const (
	SessionStatusPending SessionStatus = "pending"
	SessionStatusReady   SessionStatus = "ready"
)

// SessionState is the caller-facing projection of one clarification session.
type SessionState struct {
	SessionID          string                    `json:"session_id"`
	OriginalQuery      string                    `json:"original_query"`
	AutoApplied        map[string]string         `json:"auto_applied"`
	Answers            map[string][]string       `json:"answers"`
	Pending            []ClarificationSuggestion `json:"pending"`
	MatchedQuestionIDs []string                  `json:"matched_question_ids"`
	ResolvedContext    map[string]string         `json:"resolved_context"`
	Status             SessionStatus             `json:"status"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}
