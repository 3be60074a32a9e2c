// Package handlers provides HTTP handlers for case metrics.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/modules/analytics"
	"github.com/opencoaf/caseledger/internal/modules/ledger"
)

// Handler handles analytics HTTP requests
type Handler struct {
	service *analytics.Service
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// HandleMetrics handles GET /api/cases/{caseID}/metrics with the shared
// filter query parameters.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	filter, err := ledger.FilterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	metrics, err := h.service.CaseMetrics(caseID, filter)
	if err != nil {
		h.log.Error().Err(err).Str("case_id", caseID).Msg("Failed to compute metrics")
		http.Error(w, "failed to compute metrics", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, metrics)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
