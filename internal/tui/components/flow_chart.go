package components

import (
	"fmt"
	"strings"

	"oikenops/flowmetrics/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// chartHeight is the fixed height for all metric charts.
const chartHeight = 6

// FlowChart renders a single-series chart of a metric over time with a
// label header and a summary line. Returns a muted placeholder when the
// series is empty.
func FlowChart(label string, data []float64, width int, suffix string) string {
	if len(data) == 0 {
		return styles.MutedText.Render(label + ": no data")
	}

	// Reserve space for Y-axis labels (number + " ┤" ≈ 9 chars).
	plotWidth := width - 9
	if plotWidth < 10 {
		plotWidth = 10
	}

	chart := asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.DodgerBlue),
		asciigraph.LabelColor(asciigraph.Default),
	)

	summary := styles.MutedText.Render("  " + seriesSummary(data, suffix))

	header := styles.Label.Render(label)
	return lipgloss.JoinVertical(lipgloss.Left, header, chart, summary)
}

// FlowDualChart renders two overlaid series (successful vs failed
// exchanges) with a shared label header and per-series legends.
func FlowDualChart(label string, series1, series2 []float64, legend1, legend2 string, width int, suffix string) string {
	if len(series1) == 0 && len(series2) == 0 {
		return styles.MutedText.Render(label + ": no data")
	}

	// PlotMany needs both series present; pad an absent one with zeros.
	if len(series1) == 0 {
		series1 = make([]float64, len(series2))
	}
	if len(series2) == 0 {
		series2 = make([]float64, len(series1))
	}

	plotWidth := width - 9
	if plotWidth < 10 {
		plotWidth = 10
	}

	chart := asciigraph.PlotMany(
		[][]float64{series1, series2},
		asciigraph.Height(chartHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.LightCoral),
		asciigraph.SeriesLegends(legend1, legend2),
		asciigraph.LabelColor(asciigraph.Default),
	)

	summaryParts := []string{
		fmt.Sprintf("  %s  %s", legend1, seriesSummary(series1, suffix)),
		fmt.Sprintf("  %s  %s", legend2, seriesSummary(series2, suffix)),
	}
	summary := styles.MutedText.Render(strings.Join(summaryParts, "\n"))

	header := styles.Label.Render(label)
	return lipgloss.JoinVertical(lipgloss.Left, header, chart, summary)
}

// seriesSummary produces a "total / avg / peak" line for a series.
func seriesSummary(data []float64, suffix string) string {
	var total, peak float64
	for _, v := range data {
		total += v
		if v > peak {
			peak = v
		}
	}
	avg := total / float64(len(data))
	return fmt.Sprintf("total: %s  avg: %s  peak: %s",
		formatValue(total, suffix),
		formatValue(avg, suffix),
		formatValue(peak, suffix),
	)
}

// formatValue renders a float with an optional suffix, using human-readable
// formatting for large values.
func formatValue(v float64, suffix string) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM%s", v/1_000_000, suffix)
	case v >= 10_000:
		return fmt.Sprintf("%.1fK%s", v/1_000, suffix)
	default:
		return fmt.Sprintf("%.0f%s", v, suffix)
	}
}
