package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plotline-io/plotline/internal/model"
)

type columnsMsg []model.Column

type summaryMsg struct {
	histogram  *model.Histogram
	categories *model.CategoryCounts
	scatter    *model.Scatter
}

type errMsg struct{ err error }

type tickMsg time.Time

const queryTimeout = 30 * time.Second

func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loadColumns(), m.tick())
}

func (m *DashboardModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *DashboardModel) loadColumns() tea.Cmd {
	warehouse, table := m.warehouse, m.table
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		cols, err := warehouse.Columns(ctx, table)
		if err != nil {
			return errMsg{err}
		}
		return columnsMsg(cols)
	}
}

// fetchSummary queries the warehouse for the selected column and, when axes
// are available, the heatmap grid. Runs in a Bubble Tea command goroutine.
func (m *DashboardModel) fetchSummary() tea.Cmd {
	col, ok := m.currentColumn()
	if !ok {
		return nil
	}
	warehouse, table := m.warehouse, m.table
	scatterX, scatterY := m.scatterX, m.scatterY

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		var out summaryMsg
		var err error
		if col.Kind == model.KindCategory {
			out.categories, err = warehouse.CategoryCounts(ctx, table, col.Name)
		} else {
			out.histogram, err = warehouse.Histogram(ctx, table, col.Name, model.BinOpts{})
		}
		if err != nil {
			return errMsg{err}
		}

		if scatterX != "" && scatterY != "" {
			out.scatter, err = warehouse.Scatter(ctx, table, scatterX, scatterY,
				model.ScatterOpts{Grid: true})
			if err != nil {
				return errMsg{err}
			}
		}
		return out
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case columnsMsg:
		m.columns = msg
		m.colIdx = 0
		m.pickScatterAxes()
		m.loading = true
		return m, m.fetchSummary()

	case summaryMsg:
		m.loading = false
		m.err = nil
		if msg.histogram != nil {
			m.histogram = msg.histogram
			m.categories = nil
		}
		if msg.categories != nil {
			m.categories = msg.categories
			m.histogram = nil
		}
		if msg.scatter != nil {
			m.scatter = msg.scatter
		}
		return m, nil

	case errMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tickMsg:
		if m.paused {
			return m, m.tick()
		}
		return m, tea.Batch(m.fetchSummary(), m.tick())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextColumn):
		m.cycleColumn(1)
		m.loading = true
		return m, m.fetchSummary()

	case key.Matches(msg, m.keys.PrevColumn):
		m.cycleColumn(-1)
		m.loading = true
		return m, m.fetchSummary()

	case key.Matches(msg, m.keys.ToggleLog):
		m.log10 = !m.log10
		return m, nil

	case key.Matches(msg, m.keys.ToggleNorm):
		m.normed = !m.normed
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.fetchSummary()

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		return m, nil
	}

	return m, nil
}
