package redflags

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/opencoaf/caseledger/internal/domain"
)

// minBaselineSample - below this many transactions an account has no
// established baseline and the profile rule stays silent rather than firing
// off a meaningless average.
const minBaselineSample = 5

// detectIncompatibleProfile flags transactions whose magnitude is
// incompatible with the account's established baseline: any amount above the
// historical mean times the configured multiplier.
func detectIncompatibleProfile(txs []domain.Transaction, th domain.Thresholds) []domain.RedFlagAlert {
	byHolder := make(map[string][]domain.Transaction)
	var holders []string
	for _, tx := range txs {
		h := tx.HolderDocument
		if _, seen := byHolder[h]; !seen {
			holders = append(holders, h)
		}
		byHolder[h] = append(byHolder[h], tx)
	}

	var alerts []domain.RedFlagAlert
	for _, holder := range holders {
		account := byHolder[holder]
		if len(account) < minBaselineSample {
			continue
		}

		total := decimal.Zero
		for _, tx := range account {
			total = total.Add(tx.Amount)
		}
		baseline := total.DivRound(decimal.NewFromInt(int64(len(account))), 4)
		ceiling := baseline.Mul(th.IncompatibleProfileMultiplier)

		var outliers []domain.Transaction
		largest := decimal.Zero
		for _, tx := range account {
			if tx.Amount.GreaterThan(ceiling) {
				outliers = append(outliers, tx)
				if tx.Amount.GreaterThan(largest) {
					largest = tx.Amount
				}
			}
		}
		if len(outliers) == 0 {
			continue
		}

		subject := holder
		if subject == "" {
			subject = "titular"
		}

		// Twice past the ceiling is no longer a borderline outlier.
		severity := domain.SeverityMedium
		if largest.GreaterThan(ceiling.Mul(decimal.NewFromInt(2))) {
			severity = domain.SeverityHigh
		}

		alerts = append(alerts, domain.RedFlagAlert{
			Type:     domain.AlertIncompatibleProfile,
			Severity: severity,
			Subject:  subject,
			Title:    fmt.Sprintf("Movimentação incompatível com o perfil da conta %s", subject),
			Description: fmt.Sprintf(
				"%d transação(ões) acima de %s (média histórica %s x %s)",
				len(outliers), ceiling.StringFixed(2), baseline.StringFixed(2),
				th.IncompatibleProfileMultiplier.String()),
			EvidenceTransactionIDs: evidenceIDs(outliers),
		})
	}

	return alerts
}
