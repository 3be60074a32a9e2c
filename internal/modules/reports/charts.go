package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// RenderDailyChart draws the daily credit/debit time series as a PNG for
// embedding in the PDF report. Chart values are display-only, so converting
// the exact decimals to float64 here is acceptable; ledger math never does
// this.
func RenderDailyChart(doc *Document) ([]byte, error) {
	series := doc.Metrics.DailySeries
	if len(series) < 2 {
		return nil, fmt.Errorf("not enough daily points to chart (%d)", len(series))
	}

	dates := make([]time.Time, len(series))
	credits := make([]float64, len(series))
	debits := make([]float64, len(series))
	for i, p := range series {
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, fmt.Errorf("bad series date %q: %w", p.Date, err)
		}
		dates[i] = d
		credits[i], _ = p.Credits.Float64()
		debits[i], _ = p.Debits.Float64()
	}

	graph := chart.Chart{
		Title:  "Movimentação diária",
		Width:  800,
		Height: 300,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Créditos",
				XValues: dates,
				YValues: credits,
			},
			chart.TimeSeries{
				Name:    "Débitos",
				XValues: dates,
				YValues: debits,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render daily chart: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderMethodChart draws the per-method volume distribution as a bar chart.
func RenderMethodChart(doc *Document) ([]byte, error) {
	methods := doc.Metrics.ByMethod
	if len(methods) == 0 {
		return nil, fmt.Errorf("no method distribution to chart")
	}

	var bars []chart.Value
	for _, m := range methods {
		v, _ := m.Total.Float64()
		bars = append(bars, chart.Value{Label: m.Method, Value: v})
	}

	barChart := chart.BarChart{
		Title:  "Volume por meio de pagamento",
		Width:  800,
		Height: 300,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Bars: bars,
	}
	barChart.YAxis.ValueFormatter = func(v interface{}) string {
		if vf, isFloat := v.(float64); isFloat {
			return fmt.Sprintf("R$ %.0f", vf)
		}
		return ""
	}

	var buf bytes.Buffer
	if err := barChart.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render method chart: %w", err)
	}
	return buf.Bytes(), nil
}
