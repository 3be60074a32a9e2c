package ingest

import (
	"fmt"
	"time"

	"github.com/opencoaf/caseledger/internal/domain"
)

// ValidationResult is purely advisory. Valid is false when any warning
// fired, but the pipeline proceeds regardless - this is a soft gate that
// tells the investigator what to double-check, not an abort.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
}

// Validate screens a normalized ledger for obviously suspect data. It never
// mutates or drops rows. Checks:
//
//   - empty result set (zero transactions parsed)
//   - transactions dated after the current moment (retained but flagged)
//   - zero amounts (the normalizer already excludes these; re-checked here
//     to catch programmer error in new parsers)
//   - duplicate rows on (date, amount, type, counterparty) - warned, never
//     auto-deduplicated, since legitimate repeated payments look identical
//
// Pre-drop counts from ParseStats are surfaced too, so rows that never
// reached the ledger are still visible to the user.
func Validate(transactions []domain.Transaction, stats *ParseStats) ValidationResult {
	var warnings []string

	if len(transactions) == 0 {
		warnings = append(warnings, "no valid transactions parsed from file")
	}

	now := time.Now()
	futureDated := 0
	zeroAmount := 0
	seen := make(map[string]int)
	duplicates := 0

	for _, tx := range transactions {
		if tx.Date.After(now) {
			futureDated++
		}
		if tx.Amount.IsZero() {
			zeroAmount++
		}
		key := fmt.Sprintf("%d|%s|%s|%s", tx.Date.Unix(), tx.Amount.String(), tx.Type, tx.Counterparty)
		seen[key]++
		if seen[key] == 2 {
			duplicates++
		}
	}

	if futureDated > 0 {
		warnings = append(warnings, fmt.Sprintf("%d transaction(s) dated in the future", futureDated))
	}
	if zeroAmount > 0 {
		warnings = append(warnings, fmt.Sprintf("%d transaction(s) with zero amount reached the ledger", zeroAmount))
	}
	if duplicates > 0 {
		warnings = append(warnings, fmt.Sprintf("%d possible duplicate transaction group(s) (same date, amount, type and counterparty)", duplicates))
	}

	if stats != nil {
		if stats.ZeroAmountRows > 0 {
			warnings = append(warnings, fmt.Sprintf("%d zero-amount row(s) were dropped during normalization", stats.ZeroAmountRows))
		}
		if dropped := stats.BadDateRows + stats.BadAmountRows + stats.BadTypeRows + stats.SkippedRows; dropped > 0 {
			warnings = append(warnings, fmt.Sprintf("%d row(s) could not be normalized and were dropped", dropped))
		}
	}

	return ValidationResult{
		Valid:    len(warnings) == 0,
		Warnings: warnings,
	}
}
