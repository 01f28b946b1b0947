package charts

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/heliowatt/heliowatt/internal/domain/simulation"
)

// RenderMonthly draws the monthly AC output of a report as a PNG bar chart.
func RenderMonthly(w io.Writer, report simulation.Report) error {
	if len(report.Monthly) == 0 {
		return fmt.Errorf("report has no monthly series")
	}

	bars := make([]chart.Value, 0, len(report.Monthly))
	for _, row := range report.Monthly {
		bars = append(bars, chart.Value{
			Value: row.ACKWh,
			Label: row.Month,
		})
	}

	graph := chart.BarChart{
		Title: "Monthly AC Output (kWh)",
		TitleStyle: chart.Style{
			FontSize:  16,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Height:   400,
		Width:    900,
		Bars:     bars,
		BarWidth: 50,
		XAxis: chart.Style{
			FontSize: 12,
		},
		YAxis: chart.YAxis{
			Name: "kWh",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 10,
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render monthly chart: %w", err)
	}
	return nil
}
