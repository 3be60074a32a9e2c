package redflags

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/opencoaf/caseledger/internal/domain"
)

// maxChainHops bounds the depth of chain search. Real laundering chains
// visible from seized statements rarely exceed a handful of intermediaries,
// and the bound keeps detection linear-ish on dense ledgers.
const maxChainHops = 4

// flowEdge is one money movement in the flow graph derived from the ledger:
// a debit moves funds holder -> counterparty, a credit counterparty -> holder.
type flowEdge struct {
	from, to string
	tx       domain.Transaction
}

// detectCircularity finds round trips: chains of transactions that return
// funds to their origin (A -> B -> ... -> A) within the circularity window.
// The minimum chain is 2 hops, so a direct out-and-back counts. Every hop
// must meet the materiality floor; trivial back-and-forth of small amounts
// (refunds, shared expenses) stays silent.
func detectCircularity(txs []domain.Transaction, th domain.Thresholds) []domain.RedFlagAlert {
	edges := buildFlowEdges(txs, th.CircularityFloor)
	if len(edges) < 2 {
		return nil
	}

	// Outgoing edges per node, already date-ordered because input is.
	outgoing := make(map[string][]int)
	for i, e := range edges {
		outgoing[e.from] = append(outgoing[e.from], i)
	}

	seenChains := make(map[string]bool)
	var alerts []domain.RedFlagAlert

	var walk func(origin string, chain []int)
	walk = func(origin string, chain []int) {
		last := edges[chain[len(chain)-1]]
		if len(chain) >= 2 && last.to == origin {
			if alert, key := chainAlert(edges, chain, th); !seenChains[key] {
				seenChains[key] = true
				alerts = append(alerts, alert)
			}
			return
		}
		if len(chain) >= maxChainHops {
			return
		}
		for _, next := range outgoing[last.to] {
			e := edges[next]
			if e.tx.ID == last.tx.ID {
				continue
			}
			// funds only flow forward in time
			if e.tx.Date.Before(last.tx.Date) {
				continue
			}
			if !withinDays(edges[chain[0]].tx.Date.Unix(), e.tx.Date.Unix(), th.CircularityWindowDays) {
				continue
			}
			walk(origin, append(chain, next))
		}
	}

	for i, e := range edges {
		walk(e.from, []int{i})
	}

	return alerts
}

// buildFlowEdges projects the ledger onto a directed flow graph, dropping
// movements below the materiality floor. Nodes are identified by document
// when present, otherwise by name; the account holder side falls back to a
// fixed origin node when its document is unknown.
func buildFlowEdges(txs []domain.Transaction, floor decimal.Decimal) []flowEdge {
	var edges []flowEdge
	for _, tx := range txs {
		if tx.Amount.LessThan(floor) {
			continue
		}

		holder := tx.HolderDocument
		if holder == "" {
			holder = "titular"
		}
		counterparty := tx.CounterpartyDocument
		if counterparty == "" {
			counterparty = tx.Counterparty
		}
		if counterparty == holder || counterparty == domain.UnknownCounterparty {
			continue
		}

		if tx.IsCredit() {
			edges = append(edges, flowEdge{from: counterparty, to: holder, tx: tx})
		} else {
			edges = append(edges, flowEdge{from: holder, to: counterparty, tx: tx})
		}
	}
	return edges
}

// chainAlert builds the alert for one closed chain and the canonical key
// used to deduplicate rediscoveries of the same evidence set.
func chainAlert(edges []flowEdge, chain []int, th domain.Thresholds) (domain.RedFlagAlert, string) {
	var evidence []domain.Transaction
	var hops []string
	smallest := decimal.Zero

	for i, idx := range chain {
		e := edges[idx]
		evidence = append(evidence, e.tx)
		hops = append(hops, e.from)
		if i == 0 || e.tx.Amount.LessThan(smallest) {
			smallest = e.tx.Amount
		}
	}
	hops = append(hops, edges[chain[len(chain)-1]].to)

	ids := evidenceIDs(evidence)
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	key := strings.Join(sorted, "|")

	severity := domain.SeverityMedium
	if len(chain) > 2 || smallest.GreaterThanOrEqual(th.ReportingLimit) {
		severity = domain.SeverityHigh
	}

	return domain.RedFlagAlert{
		Type:     domain.AlertCircularity,
		Severity: severity,
		Subject:  edges[chain[0]].from,
		Title:    fmt.Sprintf("Fluxo circular de recursos (%d saltos)", len(chain)),
		Description: fmt.Sprintf(
			"Recursos retornam à origem pelo caminho %s em até %d dias (menor valor no circuito: %s)",
			strings.Join(hops, " -> "), th.CircularityWindowDays, smallest.StringFixed(2)),
		EvidenceTransactionIDs: ids,
	}, key
}
