package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/plotline-io/plotline/internal/model"
)

// heatRamp runs from dark blue through cyan to white; index 0 is a cell with
// at least one observation, zero-count cells use the terminal background.
var heatRamp = []lipgloss.Color{
	"17", "18", "19", "20", "26", "32", "38", "44", "50", "15",
}

// Heatmap draws a grid scatter as colored cells, two characters per cell so
// the plot is roughly square on common terminal fonts. The y axis grows
// upward: the first rendered row holds the highest y bins.
func Heatmap(s *model.Scatter, width, height int) string {
	if !s.Grid {
		return labelStyle.Render("heatmap needs a grid scatter")
	}
	if s.NBinsX == 0 || s.NBinsY == 0 || len(s.Bins) == 0 {
		return labelStyle.Render("no data")
	}

	// Bins arrive ordered by (bin_x, bin_y); index into the dense grid by
	// position so float bin locations never need exact comparison.
	if len(s.Bins) != s.NBinsX*s.NBinsY {
		return labelStyle.Render("grid is incomplete")
	}

	var maxFreq int64
	for _, b := range s.Bins {
		if b.Freq > maxFreq {
			maxFreq = b.Freq
		}
	}

	cellsX := s.NBinsX
	if cellsX*2 > width {
		cellsX = width / 2
	}
	cellsY := s.NBinsY
	if cellsY > height-1 {
		cellsY = height - 1
	}
	if cellsX < 1 || cellsY < 1 {
		return labelStyle.Render("terminal too small")
	}

	lines := make([]string, 0, cellsY+1)
	for row := cellsY - 1; row >= 0; row-- {
		var sb strings.Builder
		// Down-sample by striding when the grid is larger than the screen.
		gy := row * s.NBinsY / cellsY
		for col := 0; col < cellsX; col++ {
			gx := col * s.NBinsX / cellsX
			freq := s.Bins[gx*s.NBinsY+gy].Freq
			sb.WriteString(heatCell(freq, maxFreq))
		}
		lines = append(lines, sb.String())
	}

	footer := fmt.Sprintf("%s x %s  max %d", s.ColumnX, s.ColumnY, maxFreq)
	lines = append(lines, labelStyle.Render(footer))
	return strings.Join(lines, "\n")
}

func heatCell(freq, maxFreq int64) string {
	if freq <= 0 || maxFreq <= 0 {
		return "  "
	}
	idx := int(float64(freq) / float64(maxFreq) * float64(len(heatRamp)-1))
	return lipgloss.NewStyle().Background(heatRamp[idx]).Render("  ")
}
