// Package handlers provides HTTP handlers for report generation.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/modules/ledger"
	"github.com/opencoaf/caseledger/internal/modules/reports"
)

// Handler handles report HTTP requests
type Handler struct {
	service *reports.Service
	log     zerolog.Logger
}

// NewHandler creates a new report handler
func NewHandler(service *reports.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "reports").Logger(),
	}
}

// HandleDownload handles GET /api/cases/{caseID}/report?format=text|csv|xlsx|pdf
// plus the shared filter query parameters.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	filter, err := ledger.FilterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := reports.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = reports.FormatPDF
	}

	artifact, err := h.service.Render(r.Context(), caseID, filter, format)
	if err != nil {
		h.log.Error().Err(err).Str("case_id", caseID).Str("format", string(format)).Msg("Report generation failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		h.log.Error().Err(err).Msg("Failed to write report body")
	}
}
