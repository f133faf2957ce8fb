package sqlgen

import (
	"strings"
	"testing"

	"github.com/plotline-io/plotline/internal/model"
)

func TestQuoteTable(t *testing.T) {
	cases := []struct {
		ref  model.TableRef
		want string
	}{
		{model.TableRef{Table: "events"}, `"events"`},
		{model.TableRef{Schema: "analytics", Table: "events"}, `"analytics"."events"`},
	}
	for _, tc := range cases {
		got, err := QuoteTable(tc.ref)
		if err != nil {
			t.Fatalf("QuoteTable(%v): %v", tc.ref, err)
		}
		if got != tc.want {
			t.Errorf("QuoteTable(%v) = %s, want %s", tc.ref, got, tc.want)
		}
	}
}

func TestQuoteTable_RejectsBadIdentifiers(t *testing.T) {
	bad := []model.TableRef{
		{Table: "events; DROP TABLE users"},
		{Table: `ev"ents`},
		{Table: "ev ents"},
		{Table: ""},
		{Schema: "bad schema", Table: "events"},
	}
	for _, ref := range bad {
		if _, err := QuoteTable(ref); err == nil {
			t.Errorf("QuoteTable(%v) should have been rejected", ref)
		}
	}
}

func TestHistogram_Numeric(t *testing.T) {
	q, err := Histogram(model.TableRef{Table: "events"}, "duration_ms", model.KindNumeric, model.BinOpts{NBins: 10})
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}

	for _, want := range []string{
		`min("duration_ms") AS min_val`,
		`floor(("duration_ms" - min_val)::numeric / nullif((max_val - min_val)::numeric, 0) * 10)`,
		`WHEN bin_nbr < 10 THEN bin_nbr ELSE bin_nbr - 1`,
		"GROUP BY bin_loc",
		"ORDER BY bin_loc",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("numeric histogram SQL missing %q:\n%s", want, q)
		}
	}
}

func TestHistogram_DefaultBinCount(t *testing.T) {
	q, err := Histogram(model.TableRef{Table: "events"}, "x", model.KindNumeric, model.BinOpts{})
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if !strings.Contains(q, "* 25)") {
		t.Errorf("histogram SQL should default to %d bins:\n%s", model.DefaultBinCount, q)
	}
}

func TestHistogram_BinWidth(t *testing.T) {
	q, err := Histogram(model.TableRef{Table: "events"}, "x", model.KindNumeric, model.BinOpts{BinWidth: 2.5})
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if !strings.Contains(q, "greatest(ceil((max_val - min_val)::numeric / 2.5), 1)") {
		t.Errorf("histogram SQL should derive bin count from width:\n%s", q)
	}
}

func TestHistogram_BinOptsConflict(t *testing.T) {
	_, err := Histogram(model.TableRef{Table: "events"}, "x", model.KindNumeric, model.BinOpts{NBins: 10, BinWidth: 1})
	if err == nil {
		t.Fatal("nbins and bin_width together should have been rejected")
	}
}

func TestHistogram_NegativeBins(t *testing.T) {
	if _, err := Histogram(model.TableRef{Table: "t"}, "x", model.KindNumeric, model.BinOpts{NBins: -1}); err == nil {
		t.Error("negative nbins should have been rejected")
	}
	if _, err := Histogram(model.TableRef{Table: "t"}, "x", model.KindNumeric, model.BinOpts{BinWidth: -1}); err == nil {
		t.Error("negative bin_width should have been rejected")
	}
}

func TestHistogram_Time(t *testing.T) {
	q, err := Histogram(model.TableRef{Table: "events"}, "created_at", model.KindTime, model.BinOpts{NBins: 12})
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	for _, want := range []string{
		`extract(epoch from ("created_at" - min_val))`,
		"interval '1 second'",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("time histogram SQL missing %q:\n%s", want, q)
		}
	}
}

func TestHistogram_Category(t *testing.T) {
	q, err := Histogram(model.TableRef{Table: "events"}, "country", model.KindCategory, model.BinOpts{})
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	for _, want := range []string{`"country" AS category`, "GROUP BY category", "ORDER BY category"} {
		if !strings.Contains(q, want) {
			t.Errorf("category SQL missing %q:\n%s", want, q)
		}
	}
}

func TestScatter_Plain(t *testing.T) {
	q, err := Scatter(model.TableRef{Table: "events"}, "x", "y", model.KindNumeric, model.KindNumeric, model.ScatterOpts{NBinsX: 20, NBinsY: 30})
	if err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	for _, want := range []string{
		`WHERE "x" IS NOT NULL AND "y" IS NOT NULL`,
		"least(floor((vx - min_x) / nullif(max_x - min_x, 0) * 20), 20 - 1)",
		"least(floor((vy - min_y) / nullif(max_y - min_y, 0) * 30), 30 - 1)",
		"ORDER BY bin_loc_x, bin_loc_y",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("scatter SQL missing %q:\n%s", want, q)
		}
	}
	if strings.Contains(q, "generate_series") {
		t.Error("plain scatter SQL should not build a grid")
	}
}

func TestScatter_Grid(t *testing.T) {
	q, err := Scatter(model.TableRef{Table: "events"}, "x", "y", model.KindNumeric, model.KindNumeric, model.ScatterOpts{NBinsX: 4, NBinsY: 4, Grid: true})
	if err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	for _, want := range []string{
		"generate_series(0, 4 - 1)",
		"coalesce(counts.freq, 0)",
		"LEFT JOIN counts ON counts.bin_x = grid.bin_x AND counts.bin_y = grid.bin_y",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("grid scatter SQL missing %q:\n%s", want, q)
		}
	}
}

func TestScatter_TimeAxis(t *testing.T) {
	q, err := Scatter(model.TableRef{Table: "events"}, "created_at", "y", model.KindTime, model.KindNumeric, model.ScatterOpts{})
	if err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	if !strings.Contains(q, `extract(epoch from "created_at")::numeric`) {
		t.Errorf("time axis should bin over epoch seconds:\n%s", q)
	}
}

func TestScatter_CategoryAxisRejected(t *testing.T) {
	_, err := Scatter(model.TableRef{Table: "events"}, "country", "y", model.KindCategory, model.KindNumeric, model.ScatterOpts{})
	if err == nil {
		t.Fatal("categorical scatter axis should have been rejected")
	}
}

func TestCategoryPairs(t *testing.T) {
	q, err := CategoryPairs(model.TableRef{Table: "events"}, "country", "device")
	if err != nil {
		t.Fatalf("CategoryPairs: %v", err)
	}
	if !strings.Contains(q, "GROUP BY category_x, category_y") {
		t.Errorf("pairs SQL missing group by:\n%s", q)
	}
}

func TestROCCurve(t *testing.T) {
	q, err := ROCCurve(model.TableRef{Schema: "ml", Table: "scores"}, "label", "score")
	if err != nil {
		t.Fatalf("ROCCurve: %v", err)
	}
	for _, want := range []string{
		`sum("label")::numeric AS tot_pos`,
		`sum("label") OVER (ORDER BY "score" DESC)`,
		"num_pos / tot_pos AS tpr",
		"ORDER BY tpr, fpr",
		`"ml"."scores"`,
	} {
		if !strings.Contains(q, want) {
			t.Errorf("roc SQL missing %q:\n%s", want, q)
		}
	}
}
