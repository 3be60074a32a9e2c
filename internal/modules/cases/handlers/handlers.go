// Package handlers provides HTTP handlers for case management.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/modules/cases"
)

// Handler handles case HTTP requests
type Handler struct {
	repo *cases.Repository
	log  zerolog.Logger
}

// NewHandler creates a new case handler
func NewHandler(repo *cases.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "cases").Logger(),
	}
}

type createCaseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
}

// HandleCreate handles POST /api/cases
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	c, err := h.repo.Create(req.Title, req.Description, req.Unit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create case")
		http.Error(w, "failed to create case", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, c)
}

// HandleList handles GET /api/cases?status=open|archived
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.URL.Query().Get("status"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list cases")
		http.Error(w, "failed to list cases", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []cases.Case{}
	}

	h.writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /api/cases/{caseID}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.Get(chi.URLParam(r, "caseID"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get case")
		http.Error(w, "failed to get case", http.StatusInternalServerError)
		return
	}
	if c == nil {
		http.Error(w, "case not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, c)
}

// HandleArchive handles POST /api/cases/{caseID}/archive
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, cases.StatusArchived)
}

// HandleReopen handles POST /api/cases/{caseID}/reopen
func (h *Handler) HandleReopen(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, cases.StatusOpen)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	caseID := chi.URLParam(r, "caseID")
	if err := h.repo.SetStatus(caseID, status); err != nil {
		h.log.Error().Err(err).Str("case_id", caseID).Msg("Failed to update case status")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"id": caseID, "status": status})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
