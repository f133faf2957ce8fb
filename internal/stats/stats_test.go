package stats

import (
	"math"
	"testing"

	"github.com/plotline-io/plotline/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAUC_PerfectClassifier(t *testing.T) {
	// TPR reaches 1 before FPR moves: AUC = 1.
	points := []model.ROCPoint{
		{TPR: 0, FPR: 0},
		{TPR: 1, FPR: 0},
		{TPR: 1, FPR: 1},
	}
	if got := AUC(points); !almostEqual(got, 1.0) {
		t.Errorf("AUC = %v, want 1.0", got)
	}
}

func TestAUC_RandomClassifier(t *testing.T) {
	// Diagonal: AUC = 0.5.
	points := []model.ROCPoint{
		{TPR: 0, FPR: 0},
		{TPR: 0.5, FPR: 0.5},
		{TPR: 1, FPR: 1},
	}
	if got := AUC(points); !almostEqual(got, 0.5) {
		t.Errorf("AUC = %v, want 0.5", got)
	}
}

func TestAUC_Empty(t *testing.T) {
	if got := AUC(nil); got != 0 {
		t.Errorf("AUC(nil) = %v, want 0", got)
	}
}

func TestHistogramWeights_Normed(t *testing.T) {
	h := &model.Histogram{
		Bins: []model.HistogramBin{
			{Loc: 0, Freq: 6},
			{Loc: 1, Freq: 3},
		},
		NullCount: 1,
	}
	weights, nullWeight := HistogramWeights(h, true)
	if !almostEqual(weights[0], 0.6) || !almostEqual(weights[1], 0.3) {
		t.Errorf("weights = %v, want [0.6 0.3]", weights)
	}
	if !almostEqual(nullWeight, 0.1) {
		t.Errorf("nullWeight = %v, want 0.1", nullWeight)
	}
}

func TestHistogramWeights_Raw(t *testing.T) {
	h := &model.Histogram{
		Bins:      []model.HistogramBin{{Freq: 4}},
		NullCount: 2,
	}
	weights, nullWeight := HistogramWeights(h, false)
	if weights[0] != 4 || nullWeight != 2 {
		t.Errorf("raw weights = %v null = %v, want [4] and 2", weights, nullWeight)
	}
}

func TestHistogramWeights_EmptyNormed(t *testing.T) {
	h := &model.Histogram{}
	weights, nullWeight := HistogramWeights(h, true)
	if len(weights) != 0 || nullWeight != 0 {
		t.Errorf("empty histogram weights = %v null = %v", weights, nullWeight)
	}
}

func TestRebin(t *testing.T) {
	h := &model.Histogram{
		Kind:      model.KindNumeric,
		NullCount: 5,
	}
	// 10 bins at locations 0..9, freq 1 each.
	for i := 0; i < 10; i++ {
		h.Bins = append(h.Bins, model.HistogramBin{Loc: float64(i), Freq: 1})
	}

	out, err := Rebin(h, 2)
	if err != nil {
		t.Fatalf("Rebin: %v", err)
	}
	if len(out.Bins) != 2 {
		t.Fatalf("Rebin produced %d bins, want 2", len(out.Bins))
	}
	// Span is 9; first target bin covers [0, 4.5), second [4.5, 9].
	if out.Bins[0].Freq != 5 || out.Bins[1].Freq != 5 {
		t.Errorf("rebinned freqs = %d, %d, want 5, 5", out.Bins[0].Freq, out.Bins[1].Freq)
	}
	if out.NullCount != 5 {
		t.Errorf("NullCount = %d, want 5", out.NullCount)
	}
}

func TestRebin_NoopWhenCoarser(t *testing.T) {
	h := &model.Histogram{Bins: []model.HistogramBin{{Loc: 0, Freq: 1}}}
	out, err := Rebin(h, 10)
	if err != nil {
		t.Fatalf("Rebin: %v", err)
	}
	if out != h {
		t.Error("Rebin should return the input unchanged when it already has fewer bins")
	}
}

func TestRebin_InvalidBins(t *testing.T) {
	if _, err := Rebin(&model.Histogram{}, 0); err == nil {
		t.Error("Rebin(0) should have been rejected")
	}
}

func TestMergeCategories_OuterJoin(t *testing.T) {
	a := &model.CategoryCounts{Counts: []model.CategoryCount{
		{Value: "x", Freq: 5},
		{Value: "y", Freq: 2},
	}}
	b := &model.CategoryCounts{Counts: []model.CategoryCount{
		{Value: "y", Freq: 7},
		{Value: "z", Freq: 1},
	}}

	merged, err := MergeCategories([]*model.CategoryCounts{a, b}, OrderAlphabetical, true, NullRight)
	if err != nil {
		t.Fatalf("MergeCategories: %v", err)
	}
	if len(merged) != 3 {
		t.Fatalf("merged %d categories, want 3", len(merged))
	}
	if merged[0].Value != "x" || merged[0].Freqs[0] != 5 || merged[0].Freqs[1] != 0 {
		t.Errorf("merged[0] = %+v, want x with freqs [5 0]", merged[0])
	}
	if merged[1].Value != "y" || merged[1].Freqs[0] != 2 || merged[1].Freqs[1] != 7 {
		t.Errorf("merged[1] = %+v, want y with freqs [2 7]", merged[1])
	}
}

func TestMergeCategories_OrderBySeries(t *testing.T) {
	a := &model.CategoryCounts{Counts: []model.CategoryCount{
		{Value: "small", Freq: 1},
		{Value: "big", Freq: 10},
	}}

	merged, err := MergeCategories([]*model.CategoryCounts{a}, 0, false, NullDrop)
	if err != nil {
		t.Fatalf("MergeCategories: %v", err)
	}
	if merged[0].Value != "big" {
		t.Errorf("descending order by series 0: first = %q, want big", merged[0].Value)
	}
}

func TestMergeCategories_NullPlacement(t *testing.T) {
	a := &model.CategoryCounts{Counts: []model.CategoryCount{
		{Value: "x", Freq: 1},
		{Null: true, Freq: 4},
	}}

	left, err := MergeCategories([]*model.CategoryCounts{a}, OrderAlphabetical, true, NullLeft)
	if err != nil {
		t.Fatalf("MergeCategories: %v", err)
	}
	if !left[0].Null {
		t.Error("NullLeft should place the NULL bucket first")
	}

	right, _ := MergeCategories([]*model.CategoryCounts{a}, OrderAlphabetical, true, NullRight)
	if !right[len(right)-1].Null {
		t.Error("NullRight should place the NULL bucket last")
	}

	dropped, _ := MergeCategories([]*model.CategoryCounts{a}, OrderAlphabetical, true, NullDrop)
	for _, m := range dropped {
		if m.Null {
			t.Error("NullDrop should omit the NULL bucket")
		}
	}
}

func TestMergeCategories_BadOrderBy(t *testing.T) {
	a := &model.CategoryCounts{}
	if _, err := MergeCategories([]*model.CategoryCounts{a}, 3, true, NullLeft); err == nil {
		t.Error("out-of-range order_by index should have been rejected")
	}
}
