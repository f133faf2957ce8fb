package model

import "context"

// BinOpts controls bin sizing for 1D summaries. Exactly one of NBins or
// BinWidth may be set; a zero NBins falls back to DefaultBinCount when
// BinWidth is also zero.
type BinOpts struct {
	NBins    int
	BinWidth float64
}

// ScatterOpts controls bin sizing for 2D summaries.
type ScatterOpts struct {
	NBinsX int
	NBinsY int
	Grid   bool // fill in zero-frequency cells for heatmaps
}

// Summarizer runs in-database summaries and returns plot-ready results.
type Summarizer interface {
	Histogram(ctx context.Context, table TableRef, column string, opts BinOpts) (*Histogram, error)
	CategoryCounts(ctx context.Context, table TableRef, column string) (*CategoryCounts, error)
	Scatter(ctx context.Context, table TableRef, columnX, columnY string, opts ScatterOpts) (*Scatter, error)
	CategoryPairs(ctx context.Context, table TableRef, columnX, columnY string) ([]CategoryPair, error)
	ROCCurve(ctx context.Context, table TableRef, labelColumn, scoreColumn string) (*ROCCurve, error)
	Profile(ctx context.Context, table TableRef, opts BinOpts) (*TableProfile, error)
}

// SchemaQuerier provides schema introspection and arbitrary read-only queries.
type SchemaQuerier interface {
	Columns(ctx context.Context, table TableRef) ([]Column, error)
	TableRowCount(ctx context.Context, table TableRef) (int64, error)
	ListTables(ctx context.Context, schema string) ([]TableRef, error)
	ExecuteQuery(ctx context.Context, query string) ([]map[string]interface{}, error)
	GetSchemaDescription() string
}

// Warehouse is the unified read contract for the HTTP API and the TUI.
type Warehouse interface {
	Summarizer
	SchemaQuerier
	Ping(ctx context.Context) error
}
