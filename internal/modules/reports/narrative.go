package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// completer is the slice of the GROQ client the narrator needs.
type completer interface {
	Configured() bool
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const narrativeSystemPrompt = `Você é um analista financeiro de uma unidade de investigação criminal.
Receberá um resumo estruturado (JSON) da análise de um caso: métricas da
movimentação financeira e alertas de indicadores de lavagem de dinheiro
(COAF). Escreva um sumário executivo objetivo em português, de dois a quatro
parágrafos, destacando os padrões mais relevantes. Não invente valores nem
transações; use somente o que está no resumo.`

// narrativeInput is the structured summary handed to the model. Amounts go
// as strings; the model never sees raw transaction rows.
type narrativeInput struct {
	CaseTitle    string   `json:"case_title"`
	Period       string   `json:"period"`
	Transactions int      `json:"transactions"`
	TotalCredits string   `json:"total_credits"`
	TotalDebits  string   `json:"total_debits"`
	Balance      string   `json:"balance"`
	AlertCount   int      `json:"alert_count"`
	AlertSummary []string `json:"alert_summary"`
}

// AttachNarrative asks the text-generation collaborator for an executive
// summary and splices it into the document. Best effort: any failure leaves
// the document untouched and the numeric sections stand on their own.
func AttachNarrative(ctx context.Context, doc *Document, client completer, log zerolog.Logger) {
	if client == nil || !client.Configured() {
		return
	}

	input := narrativeInput{
		CaseTitle:    doc.Case.Title,
		Transactions: doc.Metrics.Count,
		TotalCredits: doc.Metrics.TotalCredits.StringFixed(2),
		TotalDebits:  doc.Metrics.TotalDebits.StringFixed(2),
		Balance:      doc.Metrics.Balance.StringFixed(2),
		AlertCount:   doc.AlertCount(),
	}
	if doc.Metrics.FirstDate != "" {
		input.Period = doc.Metrics.FirstDate + " a " + doc.Metrics.LastDate
	}
	for _, group := range doc.AlertGroups {
		for _, a := range group.Alerts {
			input.AlertSummary = append(input.AlertSummary,
				fmt.Sprintf("[%s] %s: %s", a.Severity, a.Type, a.Title))
		}
	}

	payload, err := json.Marshal(input)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to build narrative input")
		return
	}

	narrative, err := client.Complete(ctx, narrativeSystemPrompt, string(payload))
	if err != nil {
		log.Warn().Err(err).Msg("Narrative generation unavailable, report proceeds without it")
		return
	}

	doc.Narrative = strings.TrimSpace(narrative)
}
