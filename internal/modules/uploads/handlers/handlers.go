// Package handlers provides HTTP handlers for file upload and ingestion.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/modules/ingest"
	"github.com/opencoaf/caseledger/internal/modules/uploads"
)

// maxUploadBytes caps one uploaded file at 50 MB. RIF exports run to a few
// MB at most; anything larger is not a bank statement.
const maxUploadBytes = 50 << 20

// Handler handles upload HTTP requests
type Handler struct {
	service *uploads.Service
	log     zerolog.Logger
}

// NewHandler creates a new upload handler
func NewHandler(service *uploads.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "uploads").Logger(),
	}
}

// HandleUpload handles POST /api/cases/{caseID}/uploads (multipart form,
// field "file")
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form or file too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing 'file' field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read uploaded file")
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	result, err := h.service.Ingest(r.Context(), caseID, header.Filename, content)
	if err != nil {
		// file-level parse failures are the client's problem, not ours
		if ingest.IsFileError(err) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.log.Error().Err(err).Str("case_id", caseID).Msg("Ingestion failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusCreated, result)
}

// HandleList handles GET /api/cases/{caseID}/uploads
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByCase(chi.URLParam(r, "caseID"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list uploads")
		http.Error(w, "failed to list uploads", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []uploads.Upload{}
	}

	h.writeJSON(w, http.StatusOK, list)
}

// HandleDelete handles DELETE /api/uploads/{uploadID}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadID")
	if err := h.service.Delete(r.Context(), uploadID); err != nil {
		h.log.Error().Err(err).Str("upload_id", uploadID).Msg("Failed to delete upload")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"id": uploadID, "status": uploads.StatusDeleted})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
