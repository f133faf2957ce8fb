package sqlgen

import (
	"fmt"

	"github.com/plotline-io/plotline/internal/model"
)

// Histogram returns the SQL for a 1D summary of column in table. The query
// yields rows of (bin_loc, freq) ordered by bin location; rows with a NULL
// value surface as a single NULL bin_loc row (sorted last), which callers
// report as the null bucket.
//
// Bin number is floor((v - min) / (max - min) * nbins); the maximum value
// is folded into the last bin so it does not land in a one-row bin of its
// own. A degenerate column (min == max) collapses to a single bin at
// min_val instead of dividing by zero.
func Histogram(table model.TableRef, column string, kind model.ColumnKind, opts model.BinOpts) (string, error) {
	switch kind {
	case model.KindNumeric:
		return numericHistogram(table, column, opts)
	case model.KindTime:
		return timeHistogram(table, column, opts)
	case model.KindCategory:
		return CategoryCounts(table, column)
	default:
		return "", fmt.Errorf("unsupported column kind %v", kind)
	}
}

func numericHistogram(table model.TableRef, column string, opts model.BinOpts) (string, error) {
	tbl, err := QuoteTable(table)
	if err != nil {
		return "", err
	}
	col, err := QuoteColumn(column)
	if err != nil {
		return "", err
	}
	nbins, err := binCountExpr(opts, "(max_val - min_val)::numeric")
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		WITH bounds AS (
			SELECT min(%[1]s) AS min_val, max(%[1]s) AS max_val FROM %[2]s
		), binned AS (
			SELECT %[1]s AS val, min_val, max_val,
				floor((%[1]s - min_val)::numeric / nullif((max_val - min_val)::numeric, 0) * %[3]s) AS bin_nbr
			FROM %[2]s, bounds
		)
		SELECT CASE
				WHEN val IS NULL THEN NULL
				WHEN bin_nbr IS NULL THEN min_val::numeric
				ELSE min_val + (CASE WHEN bin_nbr < %[3]s THEN bin_nbr ELSE bin_nbr - 1 END) / %[3]s * (max_val - min_val)
			END AS bin_loc,
			count(*) AS freq
		FROM binned
		GROUP BY bin_loc
		ORDER BY bin_loc`, col, tbl, nbins)
	return query, nil
}

// timeHistogram maps values through extract(epoch from ...) and translates
// bin numbers back to timestamps with interval arithmetic.
func timeHistogram(table model.TableRef, column string, opts model.BinOpts) (string, error) {
	tbl, err := QuoteTable(table)
	if err != nil {
		return "", err
	}
	col, err := QuoteColumn(column)
	if err != nil {
		return "", err
	}
	// BinWidth for time columns is measured in seconds.
	nbins, err := binCountExpr(opts, "extract(epoch from (max_val - min_val))::numeric")
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		WITH bounds AS (
			SELECT min(%[1]s) AS min_val, max(%[1]s) AS max_val FROM %[2]s
		), binned AS (
			SELECT %[1]s AS val, min_val, max_val,
				floor(extract(epoch from (%[1]s - min_val))::numeric / nullif(extract(epoch from (max_val - min_val))::numeric, 0) * %[3]s) AS bin_nbr
			FROM %[2]s, bounds
		)
		SELECT CASE
				WHEN val IS NULL THEN NULL
				WHEN bin_nbr IS NULL THEN min_val
				ELSE min_val + (CASE WHEN bin_nbr < %[3]s THEN bin_nbr ELSE bin_nbr - 1 END) / %[3]s * extract(epoch from (max_val - min_val)) * interval '1 second'
			END AS bin_loc,
			count(*) AS freq
		FROM binned
		GROUP BY bin_loc
		ORDER BY bin_loc`, col, tbl, nbins)
	return query, nil
}

// CategoryCounts returns the SQL for a categorical summary: one row per
// distinct value with its frequency, NULL values included as their own row.
func CategoryCounts(table model.TableRef, column string) (string, error) {
	tbl, err := QuoteTable(table)
	if err != nil {
		return "", err
	}
	col, err := QuoteColumn(column)
	if err != nil {
		return "", err
	}
	query := fmt.Sprintf(`
		SELECT %[1]s AS category, count(*) AS freq
		FROM %[2]s
		GROUP BY category
		ORDER BY category`, col, tbl)
	return query, nil
}
