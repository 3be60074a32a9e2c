// Package handlers provides HTTP handlers for the transaction ledger.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/domain"
	"github.com/opencoaf/caseledger/internal/modules/ledger"
)

// Handler handles ledger HTTP requests
type Handler struct {
	repo *ledger.Repository
	log  zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(repo *ledger.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "ledger").Logger(),
	}
}

type transactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
}

// HandleList handles GET /api/cases/{caseID}/transactions with optional
// filter query parameters (from, to, min_amount, method, counterparty).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	filter, err := ledger.FilterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactions, err := h.repo.GetByCase(caseID, filter)
	if err != nil {
		h.log.Error().Err(err).Str("case_id", caseID).Msg("Failed to query transactions")
		http.Error(w, "failed to query transactions", http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}

	h.writeJSON(w, http.StatusOK, transactionsResponse{
		Transactions: transactions,
		Count:        len(transactions),
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
