package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/plotline-io/plotline/internal/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	chartTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "loading..."
	}

	width := m.width
	header := m.renderHeader(width)
	status := m.renderStatusLine(width)

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(status)
	if bodyHeight < 6 {
		return header + "\n" + status
	}

	body := m.renderBody(width, bodyHeight)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m *DashboardModel) renderHeader(width int) string {
	left := titleStyle.Render("plotline") + "  " + m.table.String()
	if col, ok := m.currentColumn(); ok {
		left += fmt.Sprintf("  %s (%s, %d/%d)", col.Name, col.Kind, m.colIdx+1, len(m.columns))
	}

	var flags []string
	if m.log10 {
		flags = append(flags, "log10")
	}
	if m.normed {
		flags = append(flags, "normed")
	}
	if m.paused {
		flags = append(flags, "paused")
	}
	if m.loading {
		flags = append(flags, "refreshing")
	}
	right := helpStyle.Render(strings.Join(flags, " "))

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func (m *DashboardModel) renderBody(width, height int) string {
	if m.err != nil {
		return sectionStyle.Width(width - 2).Render("error: " + m.err.Error())
	}

	// Heatmap takes the lower half when a scatter is available.
	chartHeight := height
	var panels []string
	if m.scatter != nil {
		chartHeight = height / 2
	}

	panels = append(panels, m.renderColumnPanel(width, chartHeight))
	if m.scatter != nil {
		panels = append(panels, m.renderHeatmapPanel(width, height-chartHeight))
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func (m *DashboardModel) renderColumnPanel(width, height int) string {
	innerWidth := width - 4
	innerHeight := height - 3
	if innerHeight < 3 {
		innerHeight = 3
	}

	var title, content string
	switch {
	case m.categories != nil:
		title = chartTitleStyle.Render("Value Counts")
		content = render.Categories(m.categories, innerWidth, innerHeight)
	case m.histogram != nil:
		title = chartTitleStyle.Render("Histogram")
		content = render.Histogram(m.histogram, render.HistogramOptions{
			Width:  innerWidth,
			Height: innerHeight - 1,
			Log10:  m.log10,
			Normed: m.normed,
		})
	default:
		title = chartTitleStyle.Render("Histogram")
		content = helpStyle.Render("waiting for data")
	}

	return sectionStyle.Width(width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m *DashboardModel) renderHeatmapPanel(width, height int) string {
	innerWidth := width - 4
	innerHeight := height - 3
	if innerHeight < 3 {
		innerHeight = 3
	}

	title := chartTitleStyle.Render(fmt.Sprintf("Heatmap  %s x %s", m.scatterX, m.scatterY))
	content := render.Heatmap(m.scatter, innerWidth, innerHeight)
	return sectionStyle.Width(width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m *DashboardModel) renderStatusLine(width int) string {
	bindings := []struct{ keys, desc string }{
		{"←/→", "column"},
		{"L", "log"},
		{"n", "norm"},
		{"r", "refresh"},
		{"space", "pause"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.keys+" "+b.desc)
	}
	line := strings.Join(parts, "  ")
	if lipgloss.Width(line) > width {
		line = line[:width]
	}
	return helpStyle.Render(line)
}
