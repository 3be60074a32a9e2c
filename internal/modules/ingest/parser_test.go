package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/opencoaf/caseledger/internal/domain"
)

func testParser() *Parser {
	return NewParser(zerolog.Nop())
}

func TestParseTXT(t *testing.T) {
	p := testParser()

	t.Run("canonical line", func(t *testing.T) {
		line := "15/01/2024|credito|1500,00|João Silva|12345678900|Pagamento|PIX"
		result, err := p.Parse("extrato.txt", strings.NewReader(line))
		require.NoError(t, err)
		require.Len(t, result.Transactions, 1)

		tx := result.Transactions[0]
		assert.True(t, tx.Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, domain.TypeCredit, tx.Type)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, "João Silva", tx.Counterparty)
		assert.Equal(t, "12345678900", tx.CounterpartyDocument)
		assert.Equal(t, "Pagamento", tx.Description)
		assert.Equal(t, "PIX", tx.Method)
	})

	t.Run("short line skipped with warning", func(t *testing.T) {
		input := "15/01/2024|credito|1500,00|João Silva\n15/01/2024|credito\n"
		result, err := p.Parse("extrato.txt", strings.NewReader(input))
		require.NoError(t, err)
		assert.Len(t, result.Transactions, 1)
		assert.Equal(t, 1, result.Stats.SkippedRows)
		assert.NotEmpty(t, result.Stats.Warnings)
	})

	t.Run("row-level failures never abort the file", func(t *testing.T) {
		input := strings.Join([]string{
			"15/01/2024|credito|1500,00|A|123|ok|PIX",
			"not-a-date|credito|100,00|B|123|bad date|PIX",
			"16/01/2024|transferencia|100,00|C|123|bad type|PIX",
			"17/01/2024|debito|0,00|D|123|zero amount|PIX",
			"18/01/2024|debito|200,00|E|123|ok|TED",
		}, "\n")
		result, err := p.Parse("extrato.txt", strings.NewReader(input))
		require.NoError(t, err)
		assert.Len(t, result.Transactions, 2)
		assert.Equal(t, 5, result.Stats.TotalRows)
		assert.Equal(t, 2, result.Stats.ParsedRows)
		assert.Equal(t, 1, result.Stats.BadDateRows)
		assert.Equal(t, 1, result.Stats.BadTypeRows)
		assert.Equal(t, 1, result.Stats.ZeroAmountRows)
	})

	t.Run("missing counterparty falls back to sentinel", func(t *testing.T) {
		line := "15/01/2024|debito|50,00||||PIX"
		result, err := p.Parse("extrato.txt", strings.NewReader(line))
		require.NoError(t, err)
		require.Len(t, result.Transactions, 1)
		assert.Equal(t, domain.UnknownCounterparty, result.Transactions[0].Counterparty)
	})
}

func TestParseCSV(t *testing.T) {
	p := testParser()

	t.Run("header driven", func(t *testing.T) {
		input := "Data,Tipo,Valor,Contraparte,Documento\n" +
			"15/01/2024,credito,\"1.500,00\",Maria Souza,987.654.321-00\n" +
			"16/01/2024,debito,\"250,00\",Mercado Central,\n"
		result, err := p.Parse("extrato.csv", strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, result.Transactions, 2)

		assert.Equal(t, "Maria Souza", result.Transactions[0].Counterparty)
		assert.Equal(t, "98765432100", result.Transactions[0].CounterpartyDocument)
		assert.True(t, result.Transactions[0].Amount.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, domain.TypeDebit, result.Transactions[1].Type)
	})

	t.Run("semicolon delimited", func(t *testing.T) {
		input := "Data;Tipo;Valor\n15/01/2024;credito;100,00\n"
		result, err := p.Parse("extrato.csv", strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, result.Transactions, 1)
	})

	t.Run("missing required column rejects whole file", func(t *testing.T) {
		input := "nome,valor\nJoão,100\nMaria,200\n"
		result, err := p.Parse("extrato.csv", strings.NewReader(input))
		require.Error(t, err)
		assert.True(t, IsMissingColumn(err))
		assert.Nil(t, result)
	})

	t.Run("empty file rejected", func(t *testing.T) {
		_, err := p.Parse("extrato.csv", strings.NewReader(""))
		assert.Error(t, err)
	})
}

func buildTestXLSX(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			cellName, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellName, cell))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestParseXLSX(t *testing.T) {
	p := testParser()

	t.Run("first sheet with header", func(t *testing.T) {
		r := buildTestXLSX(t, [][]interface{}{
			{"Data", "Tipo", "Valor", "Contraparte"},
			{"15/01/2024", "credito", "1.500,00", "João Silva"},
			{"16/01/2024", "debito", "300,00", "Posto BR"},
		})
		result, err := p.Parse("extrato.xlsx", r)
		require.NoError(t, err)
		require.Len(t, result.Transactions, 2)
		assert.True(t, result.Transactions[0].Amount.Equal(decimal.NewFromInt(1500)))
	})

	t.Run("sheet with only a header is rejected", func(t *testing.T) {
		r := buildTestXLSX(t, [][]interface{}{
			{"Data", "Tipo", "Valor"},
		})
		_, err := p.Parse("extrato.xlsx", r)
		assert.ErrorIs(t, err, ErrEmptySheet)
	})

	t.Run("missing required column rejects whole file", func(t *testing.T) {
		r := buildTestXLSX(t, [][]interface{}{
			{"Nome", "Valor"},
			{"João", "100,00"},
		})
		_, err := p.Parse("extrato.xlsx", r)
		require.Error(t, err)
		assert.True(t, IsMissingColumn(err))
	})
}

func TestParseUnsupportedFormat(t *testing.T) {
	p := testParser()
	_, err := p.Parse("extrato.pdf", strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = p.Parse("extrato", strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// Parsing the same bytes twice must yield identical sequences: same order,
// same field values. Identity is assigned at persist time, not parse time,
// so the comparison covers every field.
func TestParseIdempotence(t *testing.T) {
	p := testParser()
	input := "15/01/2024|credito|1500,00|João Silva|12345678900|Pagamento|PIX\n" +
		"16/01/2024|debito|2.300,50|Maria Souza|98765432100|Aluguel|TED\n"

	first, err := p.Parse("extrato.txt", strings.NewReader(input))
	require.NoError(t, err)
	second, err := p.Parse("extrato.txt", strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, len(first.Transactions), len(second.Transactions))
	for i := range first.Transactions {
		a, b := first.Transactions[i], second.Transactions[i]
		assert.True(t, a.Date.Equal(b.Date))
		assert.True(t, a.Amount.Equal(b.Amount))
		assert.Equal(t, a.Type, b.Type)
		assert.Equal(t, a.Counterparty, b.Counterparty)
		assert.Equal(t, a.CounterpartyDocument, b.CounterpartyDocument)
		assert.Equal(t, a.Description, b.Description)
		assert.Equal(t, a.Method, b.Method)
	}
	assert.Equal(t, first.Stats, second.Stats)
}
