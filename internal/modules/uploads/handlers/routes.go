package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all upload routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/cases/{caseID}/uploads", h.HandleUpload)
	r.Get("/cases/{caseID}/uploads", h.HandleList)
	r.Delete("/uploads/{uploadID}", h.HandleDelete)
}
