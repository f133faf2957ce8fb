package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/plotline-io/plotline/internal/model"
)

type stubWarehouse struct{}

func (stubWarehouse) Ping(context.Context) error { return nil }

func (stubWarehouse) Columns(context.Context, model.TableRef) ([]model.Column, error) {
	return testColumns(), nil
}

func (stubWarehouse) TableRowCount(context.Context, model.TableRef) (int64, error) { return 10, nil }

func (stubWarehouse) ListTables(_ context.Context, schema string) ([]model.TableRef, error) {
	return []model.TableRef{{Schema: schema, Table: "events"}}, nil
}

func (stubWarehouse) ExecuteQuery(context.Context, string) ([]map[string]interface{}, error) {
	return nil, nil
}

func (stubWarehouse) GetSchemaDescription() string { return "" }

func (stubWarehouse) Histogram(_ context.Context, table model.TableRef, column string, _ model.BinOpts) (*model.Histogram, error) {
	return &model.Histogram{
		Table: table, Column: column, Kind: model.KindNumeric,
		Bins: []model.HistogramBin{{Loc: 0, Freq: 5}, {Loc: 1, Freq: 3}},
	}, nil
}

func (stubWarehouse) CategoryCounts(_ context.Context, table model.TableRef, column string) (*model.CategoryCounts, error) {
	return &model.CategoryCounts{
		Table: table, Column: column,
		Counts: []model.CategoryCount{{Value: "a", Freq: 4}},
	}, nil
}

func (stubWarehouse) Scatter(_ context.Context, table model.TableRef, x, y string, _ model.ScatterOpts) (*model.Scatter, error) {
	return &model.Scatter{
		Table: table, ColumnX: x, ColumnY: y,
		NBinsX: 1, NBinsY: 1, Grid: true,
		Bins: []model.ScatterBin{{Freq: 2}},
	}, nil
}

func (stubWarehouse) CategoryPairs(context.Context, model.TableRef, string, string) ([]model.CategoryPair, error) {
	return nil, nil
}

func (stubWarehouse) ROCCurve(context.Context, model.TableRef, string, string) (*model.ROCCurve, error) {
	return &model.ROCCurve{}, nil
}

func (stubWarehouse) Profile(context.Context, model.TableRef, model.BinOpts) (*model.TableProfile, error) {
	return &model.TableProfile{}, nil
}

func testColumns() []model.Column {
	return []model.Column{
		{Name: "amount", Kind: model.KindNumeric},
		{Name: "created_at", Kind: model.KindTime},
		{Name: "country", Kind: model.KindCategory},
	}
}

func newTestModel(t *testing.T) *DashboardModel {
	t.Helper()
	m := NewDashboardModel(stubWarehouse{}, model.TableRef{Table: "events"}, time.Second)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(columnsMsg(testColumns()))
	return m
}

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestColumnsMsgPicksScatterAxes(t *testing.T) {
	m := newTestModel(t)

	if m.scatterX != "amount" || m.scatterY != "created_at" {
		t.Errorf("scatter axes = %q, %q", m.scatterX, m.scatterY)
	}
	if col, ok := m.currentColumn(); !ok || col.Name != "amount" {
		t.Errorf("current column = %+v, ok = %v", col, ok)
	}
}

func TestCycleColumnWraps(t *testing.T) {
	m := newTestModel(t)

	m.handleKey(keyMsg("l"))
	if col, _ := m.currentColumn(); col.Name != "created_at" {
		t.Errorf("after next, column = %q", col.Name)
	}

	m.handleKey(keyMsg("h"))
	m.handleKey(keyMsg("h"))
	if col, _ := m.currentColumn(); col.Name != "country" {
		t.Errorf("after wrapping back, column = %q", col.Name)
	}
}

func TestToggles(t *testing.T) {
	m := newTestModel(t)

	m.handleKey(keyMsg("L"))
	if !m.log10 {
		t.Error("L did not enable log scale")
	}
	m.handleKey(keyMsg("n"))
	if !m.normed {
		t.Error("n did not enable normalization")
	}
	m.handleKey(keyMsg(" "))
	if !m.paused {
		t.Error("space did not pause")
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.handleKey(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestSummaryMsgSwapsPanels(t *testing.T) {
	m := newTestModel(t)

	hist, _ := stubWarehouse{}.Histogram(context.Background(), m.table, "amount", model.BinOpts{})
	m.Update(summaryMsg{histogram: hist})
	if m.histogram == nil || m.categories != nil {
		t.Error("histogram summary did not replace categories")
	}

	cats, _ := stubWarehouse{}.CategoryCounts(context.Background(), m.table, "country")
	m.Update(summaryMsg{categories: cats})
	if m.categories == nil || m.histogram != nil {
		t.Error("category summary did not replace histogram")
	}
}

func TestViewRendersAfterData(t *testing.T) {
	m := newTestModel(t)

	cmd := m.fetchSummary()
	if cmd == nil {
		t.Fatal("fetchSummary returned nil")
	}
	msg := cmd()
	if e, ok := msg.(errMsg); ok {
		t.Fatalf("fetchSummary error: %v", e.err)
	}
	m.Update(msg)

	out := m.View()
	if !strings.Contains(out, "plotline") {
		t.Error("view missing header")
	}
	if !strings.Contains(out, "Histogram") {
		t.Error("view missing histogram panel")
	}
	if !strings.Contains(out, "Heatmap") {
		t.Error("view missing heatmap panel")
	}
}

func TestTickRespectsPause(t *testing.T) {
	m := newTestModel(t)
	m.paused = true

	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("paused tick should still reschedule")
	}
}
