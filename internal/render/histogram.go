// Package render turns warehouse summaries into terminal charts.
package render

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/plotline-io/plotline/internal/model"
	"github.com/plotline-io/plotline/internal/stats"
)

var (
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Background(lipgloss.Color("39"))
	nullBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("240"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// HistogramOptions controls how a histogram is drawn.
type HistogramOptions struct {
	Width  int
	Height int
	Log10  bool // bar heights on a log10 scale
	Normed bool // bar heights as fractions of the total
}

// Histogram draws the bins as a bar chart. When the chart is narrower than
// the bin count the histogram is rebinned client side first, so no warehouse
// round trip is needed to fit a small terminal. The NULL bucket, when
// present, is drawn as a gray bar on the right.
func Histogram(h *model.Histogram, opts HistogramOptions) string {
	width := opts.Width
	if width < 10 {
		width = 10
	}
	height := opts.Height
	if height < 3 {
		height = 3
	}

	if len(h.Bins) == 0 && h.NullCount == 0 {
		return labelStyle.Render("no data")
	}

	// Bar width 1 plus gap 1: each bin costs two columns. Reserve two for
	// the NULL bar when it is shown.
	maxBars := width / 2
	if h.NullCount > 0 {
		maxBars--
	}
	if maxBars < 1 {
		maxBars = 1
	}
	if len(h.Bins) > maxBars {
		rebinned, err := stats.Rebin(h, maxBars)
		if err == nil {
			h = rebinned
		}
	}

	weights, nullWeight := stats.HistogramWeights(h, opts.Normed)

	bc := barchart.New(width, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)

	for i := range h.Bins {
		v := weights[i]
		if opts.Log10 {
			v = logValue(v)
		}
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: "freq", Value: v, Style: barStyle},
			},
		})
	}
	if h.NullCount > 0 {
		v := nullWeight
		if opts.Log10 {
			v = logValue(v)
		}
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: "null", Value: v, Style: nullBarStyle},
			},
		})
	}

	bc.Draw()
	chart := bc.View()

	return lipgloss.JoinVertical(lipgloss.Left, chart, histogramFooter(h, weights, width, opts))
}

// histogramFooter shows the bin range on the left and the peak count on the
// right, with a NULL tally when the column has one.
func histogramFooter(h *model.Histogram, weights []float64, width int, opts HistogramOptions) string {
	var left string
	if len(h.Bins) > 0 {
		left = fmt.Sprintf("%s .. %s",
			FormatLoc(h.Kind, h.Bins[0]),
			FormatLoc(h.Kind, h.Bins[len(h.Bins)-1]))
	}

	peak := 0.0
	for _, w := range weights {
		if w > peak {
			peak = w
		}
	}
	right := "max " + FormatCount(peak, opts.Log10)
	if h.NullCount > 0 {
		right += fmt.Sprintf("  null %d", h.NullCount)
	}

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return labelStyle.Render(left + strings.Repeat(" ", pad) + right)
}
