package warehouse

import (
	"testing"

	"github.com/plotline-io/plotline/internal/model"
)

func TestClassifyKind(t *testing.T) {
	cases := []struct {
		dataType string
		want     model.ColumnKind
	}{
		{"bigint", model.KindNumeric},
		{"integer", model.KindNumeric},
		{"double precision", model.KindNumeric},
		{"numeric", model.KindNumeric},
		{"real", model.KindNumeric},
		{"date", model.KindTime},
		{"timestamp without time zone", model.KindTime},
		{"timestamp with time zone", model.KindTime},
		{"character varying", model.KindCategory},
		{"text", model.KindCategory},
		{"boolean", model.KindCategory},
		{"uuid", model.KindCategory},
		{"BIGINT", model.KindNumeric}, // case-insensitive
		{"  numeric  ", model.KindNumeric},
	}
	for _, tc := range cases {
		if got := classifyKind(tc.dataType); got != tc.want {
			t.Errorf("classifyKind(%q) = %v, want %v", tc.dataType, got, tc.want)
		}
	}
}

func TestScatterKinds(t *testing.T) {
	cols := []model.Column{
		{Name: "x", Kind: model.KindNumeric},
		{Name: "ts", Kind: model.KindTime},
		{Name: "country", Kind: model.KindCategory},
		{Name: "device", Kind: model.KindCategory},
	}

	kx, ky, err := scatterKinds(cols, "x", "ts")
	if err != nil {
		t.Fatalf("scatterKinds(x, ts): %v", err)
	}
	if kx != model.KindNumeric || ky != model.KindTime {
		t.Errorf("scatterKinds(x, ts) = %v, %v", kx, ky)
	}

	if _, _, err := scatterKinds(cols, "x", "country"); err == nil {
		t.Error("mixed categorical/numeric pair should have been rejected")
	}
	if _, _, err := scatterKinds(cols, "country", "device"); err == nil {
		t.Error("both-categorical pair should point callers at category pairs")
	}
	if _, _, err := scatterKinds(cols, "nope", "x"); err == nil {
		t.Error("unknown column should have been rejected")
	}
}
