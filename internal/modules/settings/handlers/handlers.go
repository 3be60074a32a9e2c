// Package handlers provides HTTP handlers for runtime settings.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/opencoaf/caseledger/internal/modules/settings"
)

// editableKeys lists the settings the API accepts, with a validator per
// key. Anything else is rejected rather than silently stored.
var editableKeys = map[string]func(string) bool{
	settings.KeyWindowDays:            isPositiveInt,
	settings.KeyFractioningThreshold:  isPositiveDecimal,
	settings.KeyReportingLimit:        isPositiveDecimal,
	settings.KeyFanInOutThreshold:     isPositiveInt,
	settings.KeyCircularityWindowDays: isPositiveInt,
	settings.KeyCircularityFloor:      isPositiveDecimal,
	settings.KeyProfileMultiplier:     isPositiveDecimal,
	"groq_api_key":                    anyValue,
	"groq_model":                      anyValue,
	"upload_retention_days":           isPositiveInt,
}

func isPositiveInt(v string) bool {
	n, err := strconv.Atoi(v)
	return err == nil && n > 0
}

func isPositiveDecimal(v string) bool {
	d, err := decimal.NewFromString(v)
	return err == nil && d.IsPositive()
}

func anyValue(string) bool { return true }

// Handler handles settings HTTP requests
type Handler struct {
	repo *settings.Repository
	log  zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(repo *settings.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "settings").Logger(),
	}
}

// HandleGetThresholds handles GET /api/settings/thresholds - the effective
// detector parameter set (defaults merged with overrides).
func (h *Handler) HandleGetThresholds(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.repo.Thresholds())
}

type updateSettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HandleUpdate handles PUT /api/settings
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	validate, known := editableKeys[req.Key]
	if !known {
		http.Error(w, "unknown setting key", http.StatusBadRequest)
		return
	}
	if !validate(req.Value) {
		http.Error(w, "invalid value for "+req.Key, http.StatusBadRequest)
		return
	}

	if err := h.repo.Set(req.Key, req.Value); err != nil {
		h.log.Error().Err(err).Str("key", req.Key).Msg("Failed to store setting")
		http.Error(w, "failed to store setting", http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("key", req.Key).Msg("Setting updated")
	h.writeJSON(w, http.StatusOK, map[string]string{"key": req.Key, "value": req.Value})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
