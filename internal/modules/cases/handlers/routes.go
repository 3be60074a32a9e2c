package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all case routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cases", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{caseID}", h.HandleGet)
		r.Post("/{caseID}/archive", h.HandleArchive)
		r.Post("/{caseID}/reopen", h.HandleReopen)
	})
}
