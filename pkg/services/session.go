package services

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hintlane/clarify-engine/pkg/models"
)

// Session tracks the lifecycle of one clarification exchange for a single
// originating query. Callers wrap every read-modify sequence in Do, which
// serializes concurrent calls touching the same session id. Independent
// sessions proceed in parallel.
type Session struct {
	mu sync.Mutex

	SessionID          string
	OriginalQuery      string
	AutoApplied        map[string]string
	Pending            []models.ClarificationSuggestion
	MatchedQuestionIDs []string
	Answers            map[string][]string
	ContextLookup      map[string][]string
	ResolvedContext    map[string]string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// answerOrder preserves submission order so context resolution is
	// deterministic when two answered questions share a tag.
	answerOrder []string

	// lastTouched mirrors UpdatedAt as unix nanos. The store reads it during
	// eviction scans without taking the session mutex.
	lastTouched atomic.Int64
}

// newSession seeds a session from an evaluation response.
func newSession(response models.ClarificationResponse, contextLookup map[string][]string) *Session {
	sessionID := response.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := time.Now().UTC()
	session := &Session{
		SessionID:          sessionID,
		OriginalQuery:      response.UserQuery,
		AutoApplied:        copyStringMap(response.AutoApplied),
		Pending:            append([]models.ClarificationSuggestion(nil), response.Suggestions...),
		MatchedQuestionIDs: append([]string(nil), response.MatchedQuestionIDs...),
		Answers:            make(map[string][]string),
		ContextLookup:      make(map[string][]string),
		ResolvedContext:    make(map[string]string),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for questionID, tags := range contextLookup {
		session.ContextLookup[questionID] = append([]string(nil), tags...)
	}
	session.lastTouched.Store(now.UnixNano())
	return session
}

// touch records a mutation timestamp. Caller holds s.mu.
func (s *Session) touch(now time.Time) {
	s.UpdatedAt = now
	s.lastTouched.Store(now.UnixNano())
}

// LastTouched reports the most recent mutation as unix nanos. Safe to call
// without holding the session mutex.
func (s *Session) LastTouched() int64 {
	return s.lastTouched.Load()
}

// Do runs fn while holding this session's mutex. Concurrent mutations of the
// same session would otherwise race on Pending and AutoApplied.
func (s *Session) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// RecordAnswers stores normalized answers and drops any auto-applied value
// for a tag the answered question covers; an explicit answer always
// supersedes an inferred default for the same dimension.
func (s *Session) RecordAnswers(answers []models.ClarificationAnswer, contextLookup map[string][]string) {
	for _, answer := range answers {
		if _, seen := s.Answers[answer.QuestionID]; !seen {
			s.answerOrder = append(s.answerOrder, answer.QuestionID)
		}
		s.Answers[answer.QuestionID] = append([]string(nil), answer.SelectedValues...)
		if tags := contextLookup[answer.QuestionID]; len(tags) > 0 {
			s.ContextLookup[answer.QuestionID] = append([]string(nil), tags...)
			for _, tag := range tags {
				delete(s.AutoApplied, tag)
			}
		}
	}
	s.touch(time.Now().UTC())
}

// ApplyPending wholesale-replaces the pending list and auto-applied map with
// a fresh evaluation's values; each evaluation's auto-applied map is
// authoritative for its step. Matched ids are unioned, context lookup merged.
func (s *Session) ApplyPending(suggestions []models.ClarificationSuggestion, autoApplied map[string]string, contextLookup map[string][]string) {
	s.Pending = append([]models.ClarificationSuggestion(nil), suggestions...)
	s.AutoApplied = copyStringMap(autoApplied)
	for _, suggestion := range suggestions {
		s.unionMatched(suggestion.QuestionID)
	}
	for questionID, tags := range contextLookup {
		s.ContextLookup[questionID] = append([]string(nil), tags...)
	}
	s.touch(time.Now().UTC())
}

// BuildContext derives the resolved context: the auto-applied values,
// overridden per tag by joined answer values. Answers win because they are
// applied after the copy. Calling it twice without intervening mutation
// returns identical maps.
func (s *Session) BuildContext() map[string]string {
	context := copyStringMap(s.AutoApplied)
	for _, questionID := range s.answerOrder {
		values := s.Answers[questionID]
		if len(values) == 0 {
			continue
		}
		tags := s.ContextLookup[questionID]
		if len(tags) == 0 {
			tags = []string{questionID}
		}
		joined := strings.Join(values, ", ")
		for _, tag := range tags {
			context[tag] = joined
		}
	}
	s.ResolvedContext = context
	s.touch(time.Now().UTC())
	return context
}

// Status is derived from the pending list on every read, never stored.
func (s *Session) Status() models.SessionStatus {
	if len(s.Pending) == 0 {
		return models.SessionStatusReady
	}
	return models.SessionStatusPending
}

// ClearPending empties the pending list; used when the caller accepts the
// proposed defaults as final.
func (s *Session) ClearPending() {
	s.Pending = []models.ClarificationSuggestion{}
	s.touch(time.Now().UTC())
}

// UnionMatched merges evaluation-matched question ids into the session,
// preserving first-seen order.
func (s *Session) UnionMatched(questionIDs []string) {
	for _, id := range questionIDs {
		s.unionMatched(id)
	}
}

// unionMatched appends a question id unless it is already tracked.
func (s *Session) unionMatched(questionID string) {
	for _, id := range s.MatchedQuestionIDs {
		if id == questionID {
			return
		}
	}
	s.MatchedQuestionIDs = append(s.MatchedQuestionIDs, questionID)
}

// ToState projects the session into its caller-facing shape.
func (s *Session) ToState() models.SessionState {
	context := s.BuildContext()

	answers := make(map[string][]string, len(s.Answers))
	for questionID, values := range s.Answers {
		answers[questionID] = append([]string(nil), values...)
	}

	return models.SessionState{
		SessionID:          s.SessionID,
		OriginalQuery:      s.OriginalQuery,
		AutoApplied:        copyStringMap(s.AutoApplied),
		Answers:            answers,
		Pending:            append([]models.ClarificationSuggestion(nil), s.Pending...),
		MatchedQuestionIDs: append([]string(nil), s.MatchedQuestionIDs...),
		ResolvedContext:    context,
		Status:             s.Status(),
		UpdatedAt:          s.UpdatedAt,
	}
}

func copyStringMap(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

