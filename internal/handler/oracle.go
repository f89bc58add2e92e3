package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/meteoryte/banana-oracle/internal/apperror"
	"github.com/meteoryte/banana-oracle/internal/auth"
	"github.com/meteoryte/banana-oracle/internal/service"
)

// OracleHandler owns the Oracle endpoints. Two error cases get decorated
// bodies beyond the standard shape: a spent budget answers 429 with the
// counter and its reset time, and missing terms acceptance answers 403
// with the termsRequired flag so clients know to show the terms screen.
type OracleHandler struct {
	oracle *service.OracleService
	logger *slog.Logger
}

// NewOracleHandler creates an OracleHandler.
func NewOracleHandler(oracle *service.OracleService, logger *slog.Logger) *OracleHandler {
	return &OracleHandler{oracle: oracle, logger: logger}
}

// writeOracleError handles the two decorated cases, delegating the rest to
// the standard mapping.
func (h *OracleHandler) writeOracleError(w http.ResponseWriter, r *http.Request, accountID string, err error) {
	switch {
	case errors.Is(err, service.ErrTermsRequired):
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":         "forbidden",
			"message":       "you must accept the Terms and Conditions to use the Oracle",
			"termsRequired": true,
		})

	case errors.Is(err, apperror.ErrExhausted):
		body := map[string]any{
			"error":            "quota_exhausted",
			"message":          "you have used all free Oracle queries for today",
			"queriesRemaining": 0,
		}
		if status, serr := h.oracle.GetStatus(r.Context(), accountID); serr == nil {
			body["resetAt"] = status.ResetAt.Add(service.QuotaWindow)
		}
		writeJSON(w, http.StatusTooManyRequests, body)

	default:
		writeError(w, err)
	}
}

type askRequest struct {
	Question string `json:"question"`
}

// HandleAsk serves POST /api/oracle/ask.
func (h *OracleHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	accountID, _ := auth.AccountIDFromContext(r.Context())
	result, err := h.oracle.Ask(r.Context(), accountID, req.Question)
	if err != nil {
		h.writeOracleError(w, r, accountID, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type storyRequest struct {
	Theme    string `json:"theme"`
	Era      string `json:"era"`
	Location string `json:"location"`
}

// HandleGenerateStory serves POST /api/oracle/generate-story.
func (h *OracleHandler) HandleGenerateStory(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	accountID, _ := auth.AccountIDFromContext(r.Context())
	result, err := h.oracle.GenerateStory(r.Context(), accountID, req.Theme, req.Era, req.Location)
	if err != nil {
		h.writeOracleError(w, r, accountID, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleStatus serves GET /api/oracle/status.
func (h *OracleHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.AccountIDFromContext(r.Context())
	status, err := h.oracle.GetStatus(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
