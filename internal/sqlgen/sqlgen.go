// Package sqlgen emits the aggregate SQL that turns millions of warehouse
// rows into a handful of plot-ready summary rows. All binning happens in
// the database; the client only ever sees O(bins) results.
package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/plotline-io/plotline/internal/model"
)

// identPattern matches plain SQL identifiers. Anything else is rejected
// rather than quoted-and-hoped-for; summary targets come from config or
// API callers, not from trusted code.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ValidIdent reports whether name can be used as a schema, table, or
// column identifier.
func ValidIdent(name string) bool {
	return identPattern.MatchString(name)
}

// quoteIdent double-quotes an already validated identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteTable renders a TableRef as a quoted, optionally schema-qualified
// SQL name.
func QuoteTable(t model.TableRef) (string, error) {
	if !ValidIdent(t.Table) {
		return "", fmt.Errorf("invalid table name %q", t.Table)
	}
	if t.Schema == "" {
		return quoteIdent(t.Table), nil
	}
	if !ValidIdent(t.Schema) {
		return "", fmt.Errorf("invalid schema name %q", t.Schema)
	}
	return quoteIdent(t.Schema) + "." + quoteIdent(t.Table), nil
}

// QuoteColumn validates and quotes a column name.
func QuoteColumn(name string) (string, error) {
	if !ValidIdent(name) {
		return "", fmt.Errorf("invalid column name %q", name)
	}
	return quoteIdent(name), nil
}

// binCountExpr returns the SQL expression for the number of bins given the
// options. With NBins it is an integer literal; with BinWidth the count is
// derived in SQL from the column range so a single round trip suffices.
// rangeExpr must evaluate to the numeric width of the column's value range.
func binCountExpr(opts model.BinOpts, rangeExpr string) (string, error) {
	if opts.NBins > 0 && opts.BinWidth > 0 {
		return "", fmt.Errorf("nbins and bin_width are mutually exclusive")
	}
	if opts.NBins < 0 {
		return "", fmt.Errorf("nbins must be positive")
	}
	if opts.BinWidth < 0 {
		return "", fmt.Errorf("bin_width must be positive")
	}
	if opts.BinWidth > 0 {
		return fmt.Sprintf("greatest(ceil(%s / %v), 1)", rangeExpr, opts.BinWidth), nil
	}
	n := opts.NBins
	if n == 0 {
		n = model.DefaultBinCount
	}
	return fmt.Sprintf("%d", n), nil
}
