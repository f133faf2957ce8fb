package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/plotline-io/plotline/internal/model"
)

const categoryBarWidth = 12

// Categories draws one fixed-width bar row per category value with its share
// of the total. Rows beyond maxRows are folded into an "(other)" line so the
// chart height stays bounded on wide-cardinality columns.
func Categories(c *model.CategoryCounts, width, maxRows int) string {
	if len(c.Counts) == 0 {
		return labelStyle.Render("no data")
	}
	if width < 30 {
		width = 30
	}
	if maxRows < 1 {
		maxRows = 1
	}

	counts := c.Counts
	var other model.CategoryCount
	if len(counts) > maxRows {
		other = model.CategoryCount{Value: "(other)"}
		for _, cc := range counts[maxRows-1:] {
			other.Freq += cc.Freq
		}
		counts = counts[:maxRows-1]
	}

	var total, maxFreq int64
	for _, cc := range c.Counts {
		total += cc.Freq
		if cc.Freq > maxFreq {
			maxFreq = cc.Freq
		}
	}
	if other.Freq > maxFreq {
		maxFreq = other.Freq
	}

	labelWidth := width - categoryBarWidth - 10
	if labelWidth < 8 {
		labelWidth = 8
	}

	var lines []string
	for i, cc := range counts {
		lines = append(lines, categoryLine(cc, total, maxFreq, labelWidth, i))
	}
	if other.Freq > 0 {
		lines = append(lines, categoryLine(other, total, maxFreq, labelWidth, len(counts)))
	}
	return strings.Join(lines, "\n")
}

func categoryLine(cc model.CategoryCount, total, maxFreq int64, labelWidth, rank int) string {
	fillWidth := 0
	if maxFreq > 0 {
		fillWidth = int(float64(cc.Freq) * float64(categoryBarWidth) / float64(maxFreq))
	}
	if fillWidth == 0 && cc.Freq > 0 {
		fillWidth = 1
	}
	bar := strings.Repeat("█", fillWidth) + strings.Repeat("░", categoryBarWidth-fillWidth)

	pct := 0.0
	if total > 0 {
		pct = float64(cc.Freq) * 100 / float64(total)
	}
	percentage := fmt.Sprintf("%5.1f%%", pct)

	label := cc.Value
	if cc.Null {
		label = "NULL"
	}
	if len(label) > labelWidth {
		label = label[:labelWidth-3] + "..."
	}

	var barColor lipgloss.Style
	switch {
	case cc.Null:
		barColor = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	case rank < 3:
		barColor = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	default:
		barColor = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	}

	return fmt.Sprintf("%s %s │ %s",
		barColor.Render(bar),
		labelStyle.Render(percentage),
		label,
	)
}
