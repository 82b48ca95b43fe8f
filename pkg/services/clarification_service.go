package services

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hintlane/clarify-engine/pkg/apperrors"
	"github.com/hintlane/clarify-engine/pkg/logging"
	"github.com/hintlane/clarify-engine/pkg/models"
	"github.com/hintlane/clarify-engine/pkg/snapshots"
)

// ClarificationService defines the orchestration surface over the matching
// engine and the session store.
type ClarificationService interface {
	// Evaluate runs the matching engine for a query and creates or updates
	// the clarification session, returning its projected state.
	Evaluate(req models.ClarificationRequest) (models.SessionState, error)

	// SubmitAnswers records user answers on an existing session, re-runs the
	// matching engine with the resolved context, and returns the new state.
	// Unknown session ids fail with apperrors.ErrSessionNotFound.
	SubmitAnswers(req models.AnswerRequest) (models.SessionState, error)

	// GetSession is a pure read of an existing session's state.
	GetSession(sessionID string) (models.SessionState, error)

	// Refresh rebuilds the catalog and snapshot store from their sources.
	Refresh() error

	// ListCatalog returns the compiled reference-query definitions and any
	// cached aggregate results.
	ListCatalog() models.CatalogListing
}

// clarificationService implements ClarificationService.
type clarificationService struct {
	engine *ClarifyEngine
	store  *SessionStore
	logger *zap.Logger
}

// NewClarificationService creates the orchestration service.
func NewClarificationService(engine *ClarifyEngine, store *SessionStore, logger *zap.Logger) ClarificationService {
	return &clarificationService{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

// Evaluate runs the matching engine and persists session state.
func (c *clarificationService) Evaluate(req models.ClarificationRequest) (models.SessionState, error) {
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	response := c.engine.Evaluate(req)
	contextLookup := c.buildContextLookup(response.Suggestions)

	// Lookup and insert happen in one store critical section; a concurrent
	// Evaluate with the same fresh id lands on the created session instead
	// of overwriting it.
	session, created := c.store.GetOrCreate(response, contextLookup)

	var state models.SessionState
	session.Do(func() {
		if !created {
			session.ApplyPending(response.Suggestions, response.AutoApplied, contextLookup)
			session.UnionMatched(response.MatchedQuestionIDs)
		}
		state = session.ToState()
	})

	event := "clarification session created"
	if !created {
		event = "clarification session updated"
	}
	c.logger.Info(event,
		zap.String("session_id", state.SessionID),
		zap.String("query", logging.TruncateQuery(req.UserQuery)),
		zap.Int("pending", len(state.Pending)),
	)
	return state, nil
}

// SubmitAnswers persists user answers and returns the updated session state.
func (c *clarificationService) SubmitAnswers(req models.AnswerRequest) (models.SessionState, error) {
	if err := validateAnswers(req); err != nil {
		return models.SessionState{}, err
	}

	session, err := c.store.Ensure(req.SessionID)
	if err != nil {
		return models.SessionState{}, err
	}

	normalized := c.normalizeAnswers(req.Answers)

	var state models.SessionState
	session.Do(func() {
		if len(normalized) > 0 {
			answerLookup := make(map[string][]string, len(normalized))
			for _, answer := range normalized {
				answerLookup[answer.QuestionID] = c.engine.ContextTagsFor(answer.QuestionID)
			}
			session.RecordAnswers(normalized, answerLookup)
		}

		if req.AcceptDefaults && len(normalized) == 0 {
			// Defaults stand as final; the matching engine is not re-run.
			session.ClearPending()
			state = session.ToState()
			return
		}

		provided := session.BuildContext()
		response := c.engine.Evaluate(models.ClarificationRequest{
			UserQuery:       session.OriginalQuery,
			SessionID:       session.SessionID,
			AlreadyProvided: provided,
		})
		contextLookup := c.buildContextLookup(response.Suggestions)
		session.ApplyPending(response.Suggestions, response.AutoApplied, contextLookup)
		session.UnionMatched(response.MatchedQuestionIDs)
		state = session.ToState()
	})

	if req.AcceptDefaults && len(normalized) == 0 {
		c.logger.Info("clarification defaults accepted",
			zap.String("session_id", state.SessionID))
	} else {
		c.logger.Info("clarification session progress",
			zap.String("session_id", state.SessionID),
			zap.Int("pending", len(state.Pending)),
			zap.Int("answers", len(state.Answers)),
		)
	}
	return state, nil
}

// GetSession returns the projected state of an existing session.
func (c *clarificationService) GetSession(sessionID string) (models.SessionState, error) {
	session, err := c.store.Ensure(sessionID)
	if err != nil {
		return models.SessionState{}, err
	}
	var state models.SessionState
	session.Do(func() {
		state = session.ToState()
	})
	return state, nil
}

// Refresh reloads the catalog and snapshot store.
func (c *clarificationService) Refresh() error {
	if err := c.engine.Refresh(); err != nil {
		return fmt.Errorf("failed to refresh clarification data: %w", err)
	}
	return nil
}

// ListCatalog exposes the reference-query definitions and cached results.
func (c *clarificationService) ListCatalog() models.CatalogListing {
	return models.CatalogListing{
		Definitions: snapshots.QueryDefinitions,
		Results:     c.engine.Results(),
	}
}

// validateAnswers rejects malformed payloads before any session mutation.
func validateAnswers(req models.AnswerRequest) error {
	if !req.AcceptDefaults && len(req.Answers) == 0 {
		return apperrors.ErrEmptyAnswer
	}
	for _, answer := range req.Answers {
		if answer.QuestionID == "" || len(answer.SelectedValues) == 0 {
			return apperrors.ErrEmptyAnswer
		}
	}
	return nil
}

// buildContextLookup maps suggestion question ids to their context tags,
// falling back to the question id itself when no tags are known.
func (c *clarificationService) buildContextLookup(suggestions []models.ClarificationSuggestion) map[string][]string {
	lookup := make(map[string][]string, len(suggestions))
	for _, suggestion := range suggestions {
		tags := suggestion.ContextTags
		if len(tags) == 0 {
			tags = c.engine.ContextTagsFor(suggestion.QuestionID)
		}
		if len(tags) == 0 {
			tags = []string{suggestion.QuestionID}
		}
		lookup[suggestion.QuestionID] = tags
	}
	return lookup
}

// normalizeAnswers maps raw submitted values back to canonical option
// display text. Unmatched raw values pass through unchanged, as do answers
// for question ids the catalog does not know.
func (c *clarificationService) normalizeAnswers(answers []models.ClarificationAnswer) []models.ClarificationAnswer {
	dataset := c.engine.Dataset()
	normalized := make([]models.ClarificationAnswer, 0, len(answers))
	for _, answer := range answers {
		record := dataset.Get(answer.QuestionID)
		if record == nil {
			normalized = append(normalized, answer)
			continue
		}
		displayValues := make([]string, 0, len(answer.SelectedValues))
		for _, raw := range answer.SelectedValues {
			displayValues = append(displayValues, normalizeValue(record, raw))
		}
		normalized = append(normalized, models.ClarificationAnswer{
			QuestionID:     answer.QuestionID,
			SelectedValues: displayValues,
		})
	}
	return normalized
}

func normalizeValue(record *models.ClarificationRecord, raw string) string {
	for _, option := range record.Options {
		if option.Value == raw || option.DisplayValue == raw {
			return option.DisplayValue
		}
	}
	return raw
}
