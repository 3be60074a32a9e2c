// Package settings provides the repository for application settings.
// Settings are key-value pairs stored in config.db (detector threshold
// defaults, GROQ credentials, retention policy) and take precedence over
// environment variables, so they can be changed at runtime without a restart.
package settings

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/opencoaf/caseledger/internal/domain"
)

// Setting keys for detector threshold defaults.
const (
	KeyWindowDays            = "detector_window_days"
	KeyFractioningThreshold  = "detector_fractioning_threshold"
	KeyReportingLimit        = "detector_reporting_limit"
	KeyFanInOutThreshold     = "detector_fan_in_out_threshold"
	KeyCircularityWindowDays = "detector_circularity_window_days"
	KeyCircularityFloor      = "detector_circularity_floor"
	KeyProfileMultiplier     = "detector_profile_multiplier"
)

// Repository handles settings database operations
type Repository struct {
	db  *sql.DB // config.db - settings table
	log zerolog.Logger
}

// NewRepository creates a new settings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Get retrieves a setting value by key.
// Returns nil if the setting doesn't exist (not an error).
func (r *Repository) Get(key string) (*string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &value, nil
}

// Set stores a setting value, inserting or updating as needed.
func (r *Repository) Set(key, value string) error {
	now := time.Now().Unix()
	_, err := r.db.Exec(
		"INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, now,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// GetInt retrieves a setting as an int, returning fallback when the key is
// absent or not numeric.
func (r *Repository) GetInt(key string, fallback int) int {
	value, err := r.Get(key)
	if err != nil || value == nil {
		return fallback
	}
	parsed, err := strconv.Atoi(*value)
	if err != nil {
		r.log.Warn().Str("key", key).Str("value", *value).Msg("Setting is not an integer, using fallback")
		return fallback
	}
	return parsed
}

// GetDecimal retrieves a setting as an exact decimal, returning fallback when
// the key is absent or unparseable. Threshold values never pass through
// float64.
func (r *Repository) GetDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	value, err := r.Get(key)
	if err != nil || value == nil {
		return fallback
	}
	parsed, err := decimal.NewFromString(*value)
	if err != nil {
		r.log.Warn().Str("key", key).Str("value", *value).Msg("Setting is not a decimal, using fallback")
		return fallback
	}
	return parsed
}

// Thresholds assembles the detector parameter defaults: domain defaults
// overridden by any configured settings. Per-run request parameters override
// these again at the API layer.
func (r *Repository) Thresholds() domain.Thresholds {
	t := domain.DefaultThresholds()
	t.WindowDays = r.GetInt(KeyWindowDays, t.WindowDays)
	t.FractioningThreshold = r.GetDecimal(KeyFractioningThreshold, t.FractioningThreshold)
	t.ReportingLimit = r.GetDecimal(KeyReportingLimit, t.ReportingLimit)
	t.FanInOutThreshold = r.GetInt(KeyFanInOutThreshold, t.FanInOutThreshold)
	t.CircularityWindowDays = r.GetInt(KeyCircularityWindowDays, t.CircularityWindowDays)
	t.CircularityFloor = r.GetDecimal(KeyCircularityFloor, t.CircularityFloor)
	t.IncompatibleProfileMultiplier = r.GetDecimal(KeyProfileMultiplier, t.IncompatibleProfileMultiplier)
	return t
}
