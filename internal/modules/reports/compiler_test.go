package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/opencoaf/caseledger/internal/domain"
	"github.com/opencoaf/caseledger/internal/modules/analytics"
	"github.com/opencoaf/caseledger/internal/modules/cases"
	"github.com/opencoaf/caseledger/internal/modules/ingest"
	"github.com/opencoaf/caseledger/internal/modules/uploads"
)

func sampleDocument(t *testing.T) *Document {
	t.Helper()

	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	transactions := []domain.Transaction{
		{
			ID: "tx-01", Date: base, Amount: decimal.RequireFromString("1500.00"),
			Type: domain.TypeCredit, Counterparty: "João Silva",
			CounterpartyDocument: "12345678900", Method: "PIX",
		},
		{
			ID: "tx-02", Date: base.AddDate(0, 0, 1), Amount: decimal.RequireFromString("250.50"),
			Type: domain.TypeDebit, Counterparty: "Mercado Central", Method: "TED",
		},
	}
	metrics := analytics.Aggregate(transactions)

	alerts := []domain.RedFlagAlert{
		{
			ID: "al-1", Type: domain.AlertFractioning, Severity: domain.SeverityMedium,
			Title: "Possível fracionamento", Subject: "João Silva",
			EvidenceTransactionIDs: []string{"tx-01"},
		},
		{
			ID: "al-2", Type: domain.AlertFanInOut, Severity: domain.SeverityHigh,
			Title: "Padrão fan-out", Subject: "titular",
			EvidenceTransactionIDs: []string{"tx-01", "tx-02"},
		},
	}

	th := domain.DefaultThresholds()
	return Compile(
		&cases.Case{ID: "case-1", Title: "Operação Exemplo", Unit: "DEIC"},
		[]uploads.Upload{{
			ID: "up-1", Filename: "extrato.txt",
			Stats: ingest.ParseStats{TotalRows: 3, ParsedRows: 2, ZeroAmountRows: 1},
		}},
		&metrics, alerts, transactions, &th,
	)
}

func TestCompileGroupsAlertsBySeverity(t *testing.T) {
	doc := sampleDocument(t)

	assert.Equal(t, 2, doc.AlertCount())
	require.Len(t, doc.AlertGroups, 2)
	// high first
	assert.Equal(t, domain.SeverityHigh, doc.AlertGroups[0].Severity)
	assert.Equal(t, domain.SeverityMedium, doc.AlertGroups[1].Severity)
}

func TestCompileWithoutAnalysis(t *testing.T) {
	metrics := analytics.Aggregate(nil)
	doc := Compile(&cases.Case{ID: "c", Title: "Sem análise"}, nil, &metrics, nil, nil, nil)

	assert.Zero(t, doc.AlertCount())
	assert.Empty(t, doc.AlertGroups)
}

type fakeCompleter struct {
	reply string
	err   error
}

func (f fakeCompleter) Configured() bool { return true }
func (f fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	return f.reply, f.err
}

func TestAttachNarrative(t *testing.T) {
	t.Run("splices reply into document", func(t *testing.T) {
		doc := sampleDocument(t)
		AttachNarrative(context.Background(), doc, fakeCompleter{reply: "  resumo\n"}, zerolog.Nop())
		assert.Equal(t, "resumo", doc.Narrative)
	})

	t.Run("failure leaves document untouched", func(t *testing.T) {
		doc := sampleDocument(t)
		AttachNarrative(context.Background(), doc, fakeCompleter{err: errors.New("down")}, zerolog.Nop())
		assert.Empty(t, doc.Narrative)
	})

	t.Run("nil collaborator is fine", func(t *testing.T) {
		doc := sampleDocument(t)
		AttachNarrative(context.Background(), doc, nil, zerolog.Nop())
		assert.Empty(t, doc.Narrative)
	})
}

func TestRenderText(t *testing.T) {
	doc := sampleDocument(t)
	doc.Narrative = "Sumário de teste."

	out := string(RenderText(doc))
	assert.Contains(t, out, "Operação Exemplo")
	assert.Contains(t, out, "Sumário de teste.")
	assert.Contains(t, out, "extrato.txt")
	assert.Contains(t, out, "1500.00")
	assert.Contains(t, out, "fan-in-out")
	assert.Contains(t, out, "João Silva")
}

func TestRenderTextNoAlerts(t *testing.T) {
	metrics := analytics.Aggregate(nil)
	doc := Compile(&cases.Case{ID: "c", Title: "Vazio"}, nil, &metrics, nil, nil, nil)

	out := string(RenderText(doc))
	assert.Contains(t, out, "Nenhum indicador de alerta")
}

func TestRenderCSV(t *testing.T) {
	doc := sampleDocument(t)

	data, err := RenderCSV(doc)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows

	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "tx-01", records[1][0])
	// String() normalizes trailing zeros; the value stays exact
	assert.Equal(t, "1500", records[1][3])
	assert.Equal(t, "2024-01-15", records[1][1])
}

func TestRenderXLSX(t *testing.T) {
	doc := sampleDocument(t)

	data, err := RenderXLSX(doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Resumo")
	assert.Contains(t, sheets, "Alertas")
	assert.Contains(t, sheets, "Transações")

	title, err := f.GetCellValue("Resumo", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Operação Exemplo", title)

	amount, err := f.GetCellValue("Transações", "C2")
	require.NoError(t, err)
	assert.Equal(t, "1500.00", amount)
}

func TestRenderPDF(t *testing.T) {
	doc := sampleDocument(t)

	data, err := RenderPDF(doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"), "output must be a PDF")
}

func TestRenderCharts(t *testing.T) {
	doc := sampleDocument(t)

	t.Run("daily series", func(t *testing.T) {
		png, err := RenderDailyChart(doc)
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(png[:4]))
	})

	t.Run("method distribution", func(t *testing.T) {
		png, err := RenderMethodChart(doc)
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(png[:4]))
	})

	t.Run("single day cannot chart", func(t *testing.T) {
		metrics := analytics.Aggregate(nil)
		empty := Compile(&cases.Case{ID: "c", Title: "t"}, nil, &metrics, nil, nil, nil)
		_, err := RenderDailyChart(empty)
		assert.Error(t, err)
	})
}
