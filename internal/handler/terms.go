package handler

import (
	"net/http"

	"github.com/meteoryte/banana-oracle/internal/service"
)

// TermsHandler serves the public legal documents. No authentication: the
// terms must be readable before an account exists.
type TermsHandler struct {
	terms *service.TermsService
}

// NewTermsHandler creates a TermsHandler.
func NewTermsHandler(terms *service.TermsService) *TermsHandler {
	return &TermsHandler{terms: terms}
}

// HandleDocument serves GET /api/terms.
func (h *TermsHandler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.terms.Document())
}

// HandleVersion serves GET /api/terms/version.
func (h *TermsHandler) HandleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":     service.TermsVersion,
		"lastUpdated": service.TermsLastUpdated,
	})
}

// HandleSummary serves GET /api/terms/summary.
func (h *TermsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	version, summary := h.terms.Summary()
	writeJSON(w, http.StatusOK, map[string]string{
		"version": version,
		"summary": summary,
	})
}

// HandlePrivacy serves GET /api/terms/privacy.
func (h *TermsHandler) HandlePrivacy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.terms.Privacy())
}
