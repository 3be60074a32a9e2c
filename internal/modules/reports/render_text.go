package reports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// RenderText renders the document as a plain-text report with ASCII tables.
// This is the format investigators paste into official case files.
func RenderText(doc *Document) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "RELATÓRIO DE ANÁLISE FINANCEIRA\n")
	fmt.Fprintf(&buf, "Caso: %s\n", doc.Case.Title)
	if doc.Case.Unit != "" {
		fmt.Fprintf(&buf, "Unidade: %s\n", doc.Case.Unit)
	}
	fmt.Fprintf(&buf, "Gerado em: %s\n\n", doc.GeneratedAt.Format("02/01/2006 15:04"))

	if doc.Narrative != "" {
		buf.WriteString("SUMÁRIO EXECUTIVO\n\n")
		buf.WriteString(doc.Narrative)
		buf.WriteString("\n\n")
	}

	buf.WriteString("ARQUIVOS PROCESSADOS\n")
	uploadTable := tablewriter.NewWriter(&buf)
	uploadTable.SetHeader([]string{"Arquivo", "Linhas", "Importadas", "Descartadas"})
	for _, u := range doc.Uploads {
		dropped := u.Stats.TotalRows - u.Stats.ParsedRows
		uploadTable.Append([]string{
			u.Filename,
			fmt.Sprintf("%d", u.Stats.TotalRows),
			fmt.Sprintf("%d", u.Stats.ParsedRows),
			fmt.Sprintf("%d", dropped),
		})
	}
	uploadTable.Render()
	buf.WriteString("\n")

	buf.WriteString("MÉTRICAS\n")
	metricsTable := tablewriter.NewWriter(&buf)
	metricsTable.SetHeader([]string{"Indicador", "Valor"})
	m := doc.Metrics
	metricsTable.Append([]string{"Transações", fmt.Sprintf("%d", m.Count)})
	metricsTable.Append([]string{"Créditos (R$)", m.TotalCredits.StringFixed(2)})
	metricsTable.Append([]string{"Débitos (R$)", m.TotalDebits.StringFixed(2)})
	metricsTable.Append([]string{"Saldo (R$)", m.Balance.StringFixed(2)})
	metricsTable.Append([]string{"Tíquete médio (R$)", m.AverageTicket.StringFixed(2)})
	if m.FirstDate != "" {
		metricsTable.Append([]string{"Período", m.FirstDate + " a " + m.LastDate})
	}
	metricsTable.Render()
	buf.WriteString("\n")

	if len(m.TopCounterparties) > 0 {
		buf.WriteString("PRINCIPAIS CONTRAPARTES\n")
		cpTable := tablewriter.NewWriter(&buf)
		cpTable.SetHeader([]string{"Contraparte", "Documento", "Qtde", "Total (R$)"})
		for _, cp := range m.TopCounterparties {
			cpTable.Append([]string{
				cp.Name, cp.Document,
				fmt.Sprintf("%d", cp.Count), cp.Total.StringFixed(2),
			})
		}
		cpTable.Render()
		buf.WriteString("\n")
	}

	fmt.Fprintf(&buf, "ALERTAS (%d)\n", doc.AlertCount())
	if doc.AlertCount() == 0 {
		buf.WriteString("Nenhum indicador de alerta identificado nos parâmetros vigentes.\n\n")
	}
	for _, group := range doc.AlertGroups {
		fmt.Fprintf(&buf, "\nSeveridade: %s\n", strings.ToUpper(string(group.Severity)))
		alertTable := tablewriter.NewWriter(&buf)
		alertTable.SetHeader([]string{"Tipo", "Título", "Evidências"})
		for _, a := range group.Alerts {
			alertTable.Append([]string{
				string(a.Type), a.Title,
				fmt.Sprintf("%d transações", len(a.EvidenceTransactionIDs)),
			})
		}
		alertTable.Render()
	}
	buf.WriteString("\n")

	if len(doc.Transactions) > 0 {
		buf.WriteString("EXTRATO NORMALIZADO\n")
		txTable := tablewriter.NewWriter(&buf)
		txTable.SetHeader([]string{"Data", "Tipo", "Valor (R$)", "Contraparte", "Meio"})
		for _, tx := range doc.Transactions {
			txTable.Append([]string{
				tx.Date.Format("02/01/2006"),
				string(tx.Type),
				tx.Amount.StringFixed(2),
				tx.Counterparty,
				tx.Method,
			})
		}
		txTable.Render()
	}

	return buf.Bytes()
}
