package sqlgen

import (
	"fmt"

	"github.com/plotline-io/plotline/internal/model"
)

// axisValue returns the numeric value expression for one scatter axis.
// Time columns are mapped to epoch seconds so both axes bin identically.
func axisValue(col string, kind model.ColumnKind) (string, error) {
	switch kind {
	case model.KindNumeric:
		return col + "::numeric", nil
	case model.KindTime:
		return fmt.Sprintf("extract(epoch from %s)::numeric", col), nil
	default:
		return "", fmt.Errorf("scatter axis must be numeric or time, got %v", kind)
	}
}

func scatterBins(opts model.ScatterOpts) (nx, ny int, err error) {
	nx, ny = opts.NBinsX, opts.NBinsY
	if nx == 0 {
		nx = model.DefaultScatterBins
	}
	if ny == 0 {
		ny = model.DefaultScatterBins
	}
	if nx < 0 || ny < 0 {
		return 0, 0, fmt.Errorf("scatter bin counts must be positive")
	}
	return nx, ny, nil
}

// Scatter returns the SQL for a 2D summary of (columnX, columnY). The query
// yields rows of (bin_loc_x, bin_loc_y, freq); rows with a NULL on either
// axis are dropped. In grid mode every cell of the nx-by-ny grid appears,
// zero-filled, so heatmaps need no client-side densification. Grid cells
// and data bins share the same 0-based bin numbers, so the join is on
// integers rather than computed float locations.
func Scatter(table model.TableRef, columnX, columnY string, kindX, kindY model.ColumnKind, opts model.ScatterOpts) (string, error) {
	tbl, err := QuoteTable(table)
	if err != nil {
		return "", err
	}
	colX, err := QuoteColumn(columnX)
	if err != nil {
		return "", err
	}
	colY, err := QuoteColumn(columnY)
	if err != nil {
		return "", err
	}
	valX, err := axisValue(colX, kindX)
	if err != nil {
		return "", fmt.Errorf("column %s: %w", columnX, err)
	}
	valY, err := axisValue(colY, kindY)
	if err != nil {
		return "", fmt.Errorf("column %s: %w", columnY, err)
	}
	nx, ny, err := scatterBins(opts)
	if err != nil {
		return "", err
	}

	// least(bin, n-1) folds each axis maximum into its last bin;
	// coalesce covers a degenerate axis where min == max.
	base := fmt.Sprintf(`
		WITH vals AS (
			SELECT %[1]s AS vx, %[2]s AS vy
			FROM %[3]s
			WHERE %[4]s IS NOT NULL AND %[5]s IS NOT NULL
		), bounds AS (
			SELECT min(vx) AS min_x, max(vx) AS max_x, min(vy) AS min_y, max(vy) AS max_y FROM vals
		), counts AS (
			SELECT coalesce(least(floor((vx - min_x) / nullif(max_x - min_x, 0) * %[6]d), %[6]d - 1), 0) AS bin_x,
				coalesce(least(floor((vy - min_y) / nullif(max_y - min_y, 0) * %[7]d), %[7]d - 1), 0) AS bin_y,
				count(*) AS freq
			FROM vals, bounds
			GROUP BY bin_x, bin_y
		)`, valX, valY, tbl, colX, colY, nx, ny)

	if !opts.Grid {
		return base + fmt.Sprintf(`
		SELECT min_x + bin_x / %[1]d * (max_x - min_x) AS bin_loc_x,
			min_y + bin_y / %[2]d * (max_y - min_y) AS bin_loc_y,
			freq
		FROM counts, bounds
		ORDER BY bin_loc_x, bin_loc_y`, nx, ny), nil
	}

	return base + fmt.Sprintf(`, grid AS (
			SELECT gx.n AS bin_x, gy.n AS bin_y
			FROM generate_series(0, %[1]d - 1) AS gx(n)
			CROSS JOIN generate_series(0, %[2]d - 1) AS gy(n)
		)
		SELECT min_x + grid.bin_x::numeric / %[1]d * (max_x - min_x) AS bin_loc_x,
			min_y + grid.bin_y::numeric / %[2]d * (max_y - min_y) AS bin_loc_y,
			coalesce(counts.freq, 0) AS freq
		FROM grid
		CROSS JOIN bounds
		LEFT JOIN counts ON counts.bin_x = grid.bin_x AND counts.bin_y = grid.bin_y
		ORDER BY bin_loc_x, bin_loc_y`, nx, ny), nil
}

// CategoryPairs returns the SQL for a categorical-by-categorical summary:
// one row per (x, y) value pair with its frequency.
func CategoryPairs(table model.TableRef, columnX, columnY string) (string, error) {
	tbl, err := QuoteTable(table)
	if err != nil {
		return "", err
	}
	colX, err := QuoteColumn(columnX)
	if err != nil {
		return "", err
	}
	colY, err := QuoteColumn(columnY)
	if err != nil {
		return "", err
	}
	query := fmt.Sprintf(`
		SELECT %[1]s AS category_x, %[2]s AS category_y, count(*) AS freq
		FROM %[3]s
		GROUP BY category_x, category_y
		ORDER BY category_x, category_y`, colX, colY, tbl)
	return query, nil
}
