// Package handlers provides HTTP handlers for red-flag analysis runs.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/modules/ledger"
	"github.com/opencoaf/caseledger/internal/modules/redflags"
)

// Handler handles red-flag analysis HTTP requests
type Handler struct {
	service *redflags.Service
	log     zerolog.Logger
}

// NewHandler creates a new red-flag handler
func NewHandler(service *redflags.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "redflags").Logger(),
	}
}

// HandleRun handles POST /api/cases/{caseID}/analysis. The shared filter
// query parameters restrict the analysis window.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	filter, err := ledger.FilterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(caseID, filter)
	if err != nil {
		if errors.Is(err, redflags.ErrRunInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.log.Error().Err(err).Str("case_id", caseID).Msg("Analysis run failed")
		http.Error(w, "analysis run failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleLatest handles GET /api/cases/{caseID}/analysis
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	result, err := h.service.Latest(caseID)
	if err != nil {
		h.log.Error().Err(err).Str("case_id", caseID).Msg("Failed to load analysis")
		http.Error(w, "failed to load analysis", http.StatusInternalServerError)
		return
	}
	if result == nil {
		http.Error(w, "case has no completed analysis", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
