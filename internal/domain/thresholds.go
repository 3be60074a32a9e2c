package domain

import "github.com/shopspring/decimal"

// Thresholds holds the detector parameter set for one analysis run.
// Every alert carries a copy of the thresholds that produced it, so runs
// with different parameters remain fully traceable.
type Thresholds struct {
	// WindowDays is the rolling window for fractioning and fan-in/fan-out.
	WindowDays int `json:"window_days"`

	// FractioningThreshold - individual amounts below this value are
	// candidates for structuring clusters.
	FractioningThreshold decimal.Decimal `json:"fractioning_threshold"`

	// ReportingLimit - a cluster of sub-threshold transactions fires only
	// when its sum would have triggered this reporting limit as a single
	// transaction.
	ReportingLimit decimal.Decimal `json:"reporting_limit"`

	// FanInOutThreshold - distinct counterparties per direction above which
	// fan-in or fan-out fires.
	FanInOutThreshold int `json:"fan_in_out_threshold"`

	// CircularityWindowDays is the window for round-trip chain detection.
	CircularityWindowDays int `json:"circularity_window_days"`

	// CircularityFloor - materiality floor below which round trips are ignored.
	CircularityFloor decimal.Decimal `json:"circularity_floor"`

	// IncompatibleProfileMultiplier - a transaction (or window sum) exceeding
	// the account baseline times this multiplier fires incompatible-profile.
	IncompatibleProfileMultiplier decimal.Decimal `json:"incompatible_profile_multiplier"`
}

// DefaultThresholds returns the parameter set used when an investigation has
// not configured its own. Values follow COAF guidance: R$ 10.000 is the cash
// reporting trigger of Circular 3.978/2020, 30 days is the standard
// consolidation window.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WindowDays:                    30,
		FractioningThreshold:          decimal.NewFromInt(10000),
		ReportingLimit:                decimal.NewFromInt(10000),
		FanInOutThreshold:             10,
		CircularityWindowDays:         15,
		CircularityFloor:              decimal.NewFromInt(1000),
		IncompatibleProfileMultiplier: decimal.NewFromInt(5),
	}
}
