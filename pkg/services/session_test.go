package services

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hintlane/clarify-engine/pkg/apperrors"
	"github.com/hintlane/clarify-engine/pkg/models"
)

func sampleResponse() models.ClarificationResponse {
	return models.ClarificationResponse{
		UserQuery: "create a purchase order, which vendor",
		SessionID: "sess-1",
		Suggestions: []models.ClarificationSuggestion{
			{
				QuestionID:            "Q1",
				ClarificationQuestion: "Which vendor do you mean?",
				Selector:              models.SelectorMetadata{Kind: models.SelectorSingleSelect},
				ContextTags:           []string{"vendor"},
			},
		},
		AutoApplied:        map[string]string{"subsidiary": "Acme US"},
		MatchedQuestionIDs: []string{"Q1"},
		EvaluatedAt:        time.Now().UTC(),
	}
}

func TestSession_StatusDerivedFromPending(t *testing.T) {
	session := newSession(sampleResponse(), map[string][]string{"Q1": {"vendor"}})
	assert.Equal(t, models.SessionStatusPending, session.Status())

	session.ClearPending()
	assert.Equal(t, models.SessionStatusReady, session.Status())
}

func TestSession_BuildContextIsIdempotent(t *testing.T) {
	session := newSession(sampleResponse(), map[string][]string{"Q1": {"vendor"}})
	session.RecordAnswers(
		[]models.ClarificationAnswer{{QuestionID: "Q1", SelectedValues: []string{"Vendor B"}}},
		map[string][]string{"Q1": {"vendor"}},
	)

	first := session.BuildContext()
	second := session.BuildContext()
	assert.Equal(t, first, second)
}

func TestSession_AnswerOverridesAutoApplied(t *testing.T) {
	response := sampleResponse()
	response.AutoApplied = map[string]string{"vendor": "Vendor A"}
	session := newSession(response, map[string][]string{"Q1": {"vendor"}})

	session.RecordAnswers(
		[]models.ClarificationAnswer{{QuestionID: "Q1", SelectedValues: []string{"Vendor B"}}},
		map[string][]string{"Q1": {"vendor"}},
	)

	// The explicit answer removed the inferred default outright.
	assert.NotContains(t, session.AutoApplied, "vendor")

	context := session.BuildContext()
	assert.Equal(t, "Vendor B", context["vendor"])
}

func TestSession_BuildContextJoinsMultipleValues(t *testing.T) {
	session := newSession(sampleResponse(), map[string][]string{"Q1": {"vendor"}})
	session.RecordAnswers(
		[]models.ClarificationAnswer{{QuestionID: "Q1", SelectedValues: []string{"Vendor A", "Vendor B"}}},
		map[string][]string{"Q1": {"vendor"}},
	)

	context := session.BuildContext()
	assert.Equal(t, "Vendor A, Vendor B", context["vendor"])
}

func TestSession_BuildContextFallsBackToQuestionID(t *testing.T) {
	session := newSession(sampleResponse(), nil)
	session.RecordAnswers(
		[]models.ClarificationAnswer{{QuestionID: "Q7", SelectedValues: []string{"42"}}},
		map[string][]string{},
	)

	context := session.BuildContext()
	assert.Equal(t, "42", context["Q7"])
}

func TestSession_ApplyPendingReplacesAutoApplied(t *testing.T) {
	session := newSession(sampleResponse(), map[string][]string{"Q1": {"vendor"}})
	require.Equal(t, "Acme US", session.AutoApplied["subsidiary"])

	session.ApplyPending(nil, map[string]string{"currency": "USD"}, nil)

	assert.Equal(t, map[string]string{"currency": "USD"}, session.AutoApplied)
	assert.Empty(t, session.Pending)
}

func TestSession_UnionMatchedKeepsFirstSeenOrder(t *testing.T) {
	session := newSession(sampleResponse(), nil)
	session.UnionMatched([]string{"Q2", "Q1", "Q3", "Q2"})
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, session.MatchedQuestionIDs)
}

func TestSessionStore_EnsureUnknownID(t *testing.T) {
	store := NewSessionStore(time.Hour, 100, zap.NewNop())

	_, err := store.Ensure("missing")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.Zero(t, store.Len())
}

func TestSessionStore_GetOrCreate(t *testing.T) {
	store := NewSessionStore(time.Hour, 100, zap.NewNop())

	session, created := store.GetOrCreate(sampleResponse(), nil)
	require.NotNil(t, session)
	assert.True(t, created)

	again, created := store.GetOrCreate(sampleResponse(), nil)
	assert.False(t, created)
	assert.Same(t, session, again)

	got := store.Get(session.SessionID)
	require.NotNil(t, got)
	assert.Equal(t, session.SessionID, got.SessionID)
}

func TestSessionStore_GetOrCreateConcurrentSameID(t *testing.T) {
	store := NewSessionStore(time.Hour, 100, zap.NewNop())

	const callers = 16
	var createdCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created := store.GetOrCreate(sampleResponse(), nil)
			if created {
				createdCount.Add(1)
			}
		}()
	}
	wg.Wait()

	// Exactly one caller seeded the session; the rest joined it.
	assert.Equal(t, int32(1), createdCount.Load())
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_TTLEviction(t *testing.T) {
	store := NewSessionStore(time.Minute, 100, zap.NewNop())
	session, _ := store.GetOrCreate(sampleResponse(), nil)
	session.Do(func() {
		session.touch(time.Now().UTC().Add(-2 * time.Minute))
	})

	assert.Nil(t, store.Get(session.SessionID))
	assert.Zero(t, store.Len())
}

func TestSessionStore_CapacityEvictsOldest(t *testing.T) {
	store := NewSessionStore(time.Hour, 3, zap.NewNop())

	var ids []string
	for i := 0; i < 4; i++ {
		response := sampleResponse()
		response.SessionID = ""
		session, _ := store.GetOrCreate(response, nil)
		age := time.Duration(i) * time.Second
		session.Do(func() {
			session.touch(time.Now().UTC().Add(age))
		})
		ids = append(ids, session.SessionID)
	}

	assert.Nil(t, store.Get(ids[0]), "oldest session should be evicted")
	for _, id := range ids[1:] {
		assert.NotNil(t, store.Get(id))
	}
}

func TestSessionStore_EvictionScanDuringMutation(t *testing.T) {
	store := NewSessionStore(time.Minute, 100, zap.NewNop())
	session, _ := store.GetOrCreate(sampleResponse(), nil)

	// Eviction scans read the last-touched stamp while another goroutine
	// mutates the session; both sides must stay race-free.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			session.Do(func() {
				session.RecordAnswers(
					[]models.ClarificationAnswer{{QuestionID: "Q1", SelectedValues: []string{"Vendor B"}}},
					map[string][]string{"Q1": {"vendor"}},
				)
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			store.Get(session.SessionID)
		}
	}()
	wg.Wait()

	assert.NotNil(t, store.Get(session.SessionID))
}

func TestSessionStore_Remove(t *testing.T) {
	store := NewSessionStore(time.Hour, 100, zap.NewNop())
	session, _ := store.GetOrCreate(sampleResponse(), nil)

	store.Remove(session.SessionID)
	assert.Nil(t, store.Get(session.SessionID))

	// Removing an unknown id is a no-op.
	store.Remove("missing")
}
