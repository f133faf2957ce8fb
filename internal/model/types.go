package model

import "time"

// ColumnKind classifies how a warehouse column is summarized.
type ColumnKind int

const (
	// KindNumeric covers integer and floating point columns.
	KindNumeric ColumnKind = iota
	// KindTime covers date and timestamp columns.
	KindTime
	// KindCategory covers everything else; each distinct value is a bucket.
	KindCategory
)

// String returns the lowercase name used in API responses and cache keys.
func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTime:
		return "time"
	case KindCategory:
		return "category"
	default:
		return "unknown"
	}
}

// TableRef identifies a warehouse table, optionally schema-qualified.
type TableRef struct {
	Schema string
	Table  string
}

// String renders the reference for display and cache keys (not for SQL).
func (t TableRef) String() string {
	if t.Schema == "" {
		return t.Table
	}
	return t.Schema + "." + t.Table
}

// Column describes one warehouse column as reported by introspection.
type Column struct {
	Name     string
	DataType string // raw information_schema type name
	Kind     ColumnKind
}

// HistogramBin is one bucket of a numeric or time histogram.
// For time columns TimeLoc carries the bin location and Loc is its epoch
// seconds; for numeric columns TimeLoc is the zero value.
type HistogramBin struct {
	Loc     float64
	TimeLoc time.Time
	Freq    int64
}

// Histogram is the plot-ready result of a 1D summary over a column.
// NullCount is the number of rows whose value was NULL; it is kept out of
// Bins so renderers can place the null bucket on either side or drop it.
type Histogram struct {
	Table     TableRef
	Column    string
	Kind      ColumnKind
	Bins      []HistogramBin
	NullCount int64
}

// TotalFreq returns the summed frequency of all bins plus the null bucket.
func (h *Histogram) TotalFreq() int64 {
	total := h.NullCount
	for _, b := range h.Bins {
		total += b.Freq
	}
	return total
}

// CategoryCount is one bucket of a categorical summary.
// Null reports a NULL category value; Value is empty in that case.
type CategoryCount struct {
	Value string
	Null  bool
	Freq  int64
}

// CategoryCounts is the plot-ready result of a categorical summary.
type CategoryCounts struct {
	Table  TableRef
	Column string
	Counts []CategoryCount
}

// ScatterBin is one cell of a 2D histogram.
type ScatterBin struct {
	X    float64
	Y    float64
	Freq int64
}

// Scatter is the plot-ready result of a 2D summary. When Grid is true the
// bins form a dense NBinsX by NBinsY grid with zero-frequency cells filled
// in, as needed for heatmaps.
type Scatter struct {
	Table   TableRef
	ColumnX string
	ColumnY string
	NBinsX  int
	NBinsY  int
	Grid    bool
	Bins    []ScatterBin
}

// CategoryPair is one cell of a categorical-by-categorical summary.
type CategoryPair struct {
	ValueX string
	ValueY string
	Freq   int64
}

// ROCPoint is one threshold of an in-database ROC curve.
type ROCPoint struct {
	Threshold float64
	TPR       float64
	FPR       float64
}

// ROCCurve is the plot-ready ROC result; AUC is computed client-side from
// the points with the trapezoid rule.
type ROCCurve struct {
	Table       TableRef
	LabelColumn string
	ScoreColumn string
	Points      []ROCPoint
	AUC         float64
}

// ColumnProfile is the per-column entry of a table profile. Exactly one of
// Histogram or Categories is set, matching the column kind.
type ColumnProfile struct {
	Column     Column
	Histogram  *Histogram
	Categories *CategoryCounts
}

// TableProfile summarizes every column of a table in one pass.
type TableProfile struct {
	Table    TableRef
	RowCount int64
	Columns  []ColumnProfile
}
