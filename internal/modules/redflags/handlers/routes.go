package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all red-flag analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/cases/{caseID}/analysis", h.HandleRun)
	r.Get("/cases/{caseID}/analysis", h.HandleLatest)
}
