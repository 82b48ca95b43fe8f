package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hintlane/clarify-engine/pkg/apperrors"
	"github.com/hintlane/clarify-engine/pkg/logging"
	"github.com/hintlane/clarify-engine/pkg/models"
	"github.com/hintlane/clarify-engine/pkg/services"
)

// RefreshResponse for POST /api/clarifications/refresh.
type RefreshResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ClarificationsHandler handles clarification HTTP requests.
type ClarificationsHandler struct {
	clarificationService services.ClarificationService
	logger               *zap.Logger
}

// NewClarificationsHandler creates a new clarifications handler.
func NewClarificationsHandler(
	clarificationService services.ClarificationService,
	logger *zap.Logger,
) *ClarificationsHandler {
	return &ClarificationsHandler{
		clarificationService: clarificationService,
		logger:               logger,
	}
}

// RegisterRoutes registers the clarification handler's routes on the given mux.
func (h *ClarificationsHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/clarifications"

	mux.HandleFunc("POST "+base+"/evaluate", h.Evaluate)
	mux.HandleFunc("POST "+base+"/refresh", h.Refresh)
	mux.HandleFunc("GET "+base+"/catalog", h.Catalog)
	mux.HandleFunc("GET "+base+"/{sid}", h.GetSession)
	mux.HandleFunc("POST "+base+"/{sid}/answers", h.SubmitAnswers)
}

// Evaluate handles POST /api/clarifications/evaluate
func (h *ClarificationsHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req models.ClarificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if strings.TrimSpace(req.UserQuery) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_user_query", "user_query is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	state, err := h.clarificationService.Evaluate(req)
	if err != nil {
		h.logger.Error("Failed to evaluate clarifications",
			zap.String("user_query", logging.TruncateQuery(req.UserQuery)),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "evaluate_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: state}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SubmitAnswers handles POST /api/clarifications/{sid}/answers
func (h *ClarificationsHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sid")

	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	req.SessionID = sessionID

	state, err := h.clarificationService.SubmitAnswers(req)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "session_not_found", "Clarification session not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		if errors.Is(err, apperrors.ErrEmptyAnswer) {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_answers", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to submit clarification answers",
			zap.String("session_id", sessionID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "submit_answers_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: state}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetSession handles GET /api/clarifications/{sid}
func (h *ClarificationsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sid")

	state, err := h.clarificationService.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "session_not_found", "Clarification session not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to load clarification session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_session_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: state}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Refresh handles POST /api/clarifications/refresh
func (h *ClarificationsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.clarificationService.Refresh(); err != nil {
		h.logger.Error("Failed to refresh clarification catalog", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "refresh_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := RefreshResponse{Success: true, Message: "Clarification catalog reloaded"}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Catalog handles GET /api/clarifications/catalog
func (h *ClarificationsHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	listing := h.clarificationService.ListCatalog()
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: listing}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
