// Package tui is a terminal dashboard that watches one warehouse table:
// a histogram or category chart for the selected column, plus a heatmap of
// the first two binnable columns.
package tui

import (
	"time"

	"github.com/plotline-io/plotline/internal/model"
)

// DashboardModel is the Bubble Tea model for the dashboard.
type DashboardModel struct {
	warehouse model.Warehouse
	table     model.TableRef
	refresh   time.Duration
	keys      KeyMap

	width  int
	height int

	columns []model.Column
	colIdx  int

	// First two numeric or time columns, used for the heatmap panel.
	scatterX string
	scatterY string

	log10  bool
	normed bool
	paused bool

	loading    bool
	err        error
	histogram  *model.Histogram
	categories *model.CategoryCounts
	scatter    *model.Scatter
}

// NewDashboardModel creates a dashboard for one table.
func NewDashboardModel(warehouse model.Warehouse, table model.TableRef, refresh time.Duration) *DashboardModel {
	if refresh <= 0 {
		refresh = model.DefaultRefresh
	}
	return &DashboardModel{
		warehouse: warehouse,
		table:     table,
		refresh:   refresh,
		keys:      DefaultKeyMap(),
		loading:   true,
	}
}

// currentColumn returns the selected column, or false before introspection
// has completed.
func (m *DashboardModel) currentColumn() (model.Column, bool) {
	if len(m.columns) == 0 {
		return model.Column{}, false
	}
	return m.columns[m.colIdx], true
}

// cycleColumn moves the selection by delta, wrapping at both ends.
func (m *DashboardModel) cycleColumn(delta int) {
	if len(m.columns) == 0 {
		return
	}
	m.colIdx = (m.colIdx + delta + len(m.columns)) % len(m.columns)
	m.histogram = nil
	m.categories = nil
}

// pickScatterAxes selects the first two binnable columns for the heatmap.
func (m *DashboardModel) pickScatterAxes() {
	m.scatterX, m.scatterY = "", ""
	for _, col := range m.columns {
		if col.Kind == model.KindCategory {
			continue
		}
		if m.scatterX == "" {
			m.scatterX = col.Name
			continue
		}
		m.scatterY = col.Name
		return
	}
}
