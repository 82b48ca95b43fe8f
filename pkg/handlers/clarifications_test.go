package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hintlane/clarify-engine/pkg/apperrors"
	"github.com/hintlane/clarify-engine/pkg/models"
)

// mockClarificationService implements services.ClarificationService for
// handler tests.
type mockClarificationService struct {
	state      models.SessionState
	listing    models.CatalogListing
	evalErr    error
	submitErr  error
	getErr     error
	refreshErr error

	lastEvaluate models.ClarificationRequest
	lastSubmit   models.AnswerRequest
}

func (m *mockClarificationService) Evaluate(req models.ClarificationRequest) (models.SessionState, error) {
	m.lastEvaluate = req
	if m.evalErr != nil {
		return models.SessionState{}, m.evalErr
	}
	return m.state, nil
}

func (m *mockClarificationService) SubmitAnswers(req models.AnswerRequest) (models.SessionState, error) {
	m.lastSubmit = req
	if m.submitErr != nil {
		return models.SessionState{}, m.submitErr
	}
	return m.state, nil
}

func (m *mockClarificationService) GetSession(sessionID string) (models.SessionState, error) {
	if m.getErr != nil {
		return models.SessionState{}, m.getErr
	}
	return m.state, nil
}

func (m *mockClarificationService) Refresh() error {
	return m.refreshErr
}

func (m *mockClarificationService) ListCatalog() models.CatalogListing {
	return m.listing
}

func newTestMux(service *mockClarificationService) *http.ServeMux {
	mux := http.NewServeMux()
	NewClarificationsHandler(service, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestEvaluate_Success(t *testing.T) {
	service := &mockClarificationService{
		state: models.SessionState{
			SessionID:     "s-1",
			OriginalQuery: "create a purchase order",
			Status:        models.SessionStatusPending,
		},
	}
	mux := newTestMux(service)

	body, _ := json.Marshal(models.ClarificationRequest{UserQuery: "create a purchase order"})
	req := httptest.NewRequest(http.MethodPost, "/api/clarifications/evaluate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    models.SessionState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "s-1", resp.Data.SessionID)
	assert.Equal(t, "create a purchase order", service.lastEvaluate.UserQuery)
}

func TestEvaluate_MissingQuery(t *testing.T) {
	mux := newTestMux(&mockClarificationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/clarifications/evaluate", bytes.NewReader([]byte(`{"user_query":"   "}`)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_user_query")
}

func TestEvaluate_InvalidBody(t *testing.T) {
	mux := newTestMux(&mockClarificationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/clarifications/evaluate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}

func TestSubmitAnswers_UsesPathSessionID(t *testing.T) {
	service := &mockClarificationService{
		state: models.SessionState{SessionID: "s-7", Status: models.SessionStatusReady},
	}
	mux := newTestMux(service)

	body, _ := json.Marshal(models.AnswerRequest{
		Answers: []models.ClarificationAnswer{{QuestionID: "Q1", SelectedValues: []string{"Vendor B"}}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/clarifications/s-7/answers", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-7", service.lastSubmit.SessionID)
}

func TestSubmitAnswers_SessionNotFound(t *testing.T) {
	service := &mockClarificationService{submitErr: apperrors.ErrSessionNotFound}
	mux := newTestMux(service)

	req := httptest.NewRequest(http.MethodPost, "/api/clarifications/missing/answers", bytes.NewReader([]byte(`{"answers":[{"question_id":"Q1","selected_values":["x"]}]}`)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_not_found")
}

func TestSubmitAnswers_EmptyAnswers(t *testing.T) {
	service := &mockClarificationService{submitErr: apperrors.ErrEmptyAnswer}
	mux := newTestMux(service)

	req := httptest.NewRequest(http.MethodPost, "/api/clarifications/s-1/answers", bytes.NewReader([]byte(`{"answers":[]}`)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_answers")
}

func TestGetSession_Success(t *testing.T) {
	service := &mockClarificationService{
		state: models.SessionState{SessionID: "s-3", Status: models.SessionStatusPending},
	}
	mux := newTestMux(service)

	req := httptest.NewRequest(http.MethodGet, "/api/clarifications/s-3", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id":"s-3"`)
}

func TestGetSession_NotFound(t *testing.T) {
	service := &mockClarificationService{getErr: apperrors.ErrSessionNotFound}
	mux := newTestMux(service)

	req := httptest.NewRequest(http.MethodGet, "/api/clarifications/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefresh_Success(t *testing.T) {
	mux := newTestMux(&mockClarificationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/clarifications/refresh", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Clarification catalog reloaded")
}

func TestRefresh_Failure(t *testing.T) {
	mux := newTestMux(&mockClarificationService{refreshErr: assert.AnError})

	req := httptest.NewRequest(http.MethodPost, "/api/clarifications/refresh", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh_failed")
}

func TestCatalog_Success(t *testing.T) {
	service := &mockClarificationService{
		listing: models.CatalogListing{
			Definitions: []models.ReferenceQueryDefinition{{QueryID: "config_currencies"}},
			Results:     map[string]models.ReferenceQueryResult{},
		},
	}
	mux := newTestMux(service)

	req := httptest.NewRequest(http.MethodGet, "/api/clarifications/catalog", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "config_currencies")
}
