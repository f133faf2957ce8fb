package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/plotline-io/plotline/internal/model"
	"github.com/plotline-io/plotline/internal/sqlgen"
	"github.com/plotline-io/plotline/internal/stats"
)

// Histogram computes an in-database 1D histogram for a numeric or time
// column. The warehouse does all binning; only O(bins) rows come back.
// Categorical columns are rejected; use CategoryCounts for those.
func (s *Store) Histogram(ctx context.Context, table model.TableRef, column string, opts model.BinOpts) (*model.Histogram, error) {
	kind, err := s.ColumnKind(ctx, table, column)
	if err != nil {
		return nil, err
	}
	if kind == model.KindCategory {
		return nil, fmt.Errorf("column %q is categorical; histogram requires a numeric or time column", column)
	}
	return s.histogramForKind(ctx, table, column, kind, opts)
}

// histogramForKind runs the histogram query for an already-resolved kind.
// Profile uses it directly so one introspection covers every column.
func (s *Store) histogramForKind(ctx context.Context, table model.TableRef, column string, kind model.ColumnKind, opts model.BinOpts) (*model.Histogram, error) {
	query, err := sqlgen.Histogram(table, column, kind, opts)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := s.pool.Query(qctx, query)
	observe("histogram", start, err)
	if err != nil {
		return nil, fmt.Errorf("histogram query: %w", err)
	}
	defer rows.Close()

	h := &model.Histogram{Table: table, Column: column, Kind: kind}
	for rows.Next() {
		var freq int64
		if kind == model.KindTime {
			var loc *time.Time
			if err := rows.Scan(&loc, &freq); err != nil {
				return nil, err
			}
			if loc == nil {
				h.NullCount = freq
				continue
			}
			h.Bins = append(h.Bins, model.HistogramBin{
				Loc:     float64(loc.Unix()),
				TimeLoc: *loc,
				Freq:    freq,
			})
		} else {
			var loc *float64
			if err := rows.Scan(&loc, &freq); err != nil {
				return nil, err
			}
			if loc == nil {
				h.NullCount = freq
				continue
			}
			h.Bins = append(h.Bins, model.HistogramBin{Loc: *loc, Freq: freq})
		}
	}
	return h, rows.Err()
}

// CategoryCounts computes one bucket per distinct value of a column.
func (s *Store) CategoryCounts(ctx context.Context, table model.TableRef, column string) (*model.CategoryCounts, error) {
	query, err := sqlgen.CategoryCounts(table, column)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := s.pool.Query(qctx, query)
	observe("categories", start, err)
	if err != nil {
		return nil, fmt.Errorf("category query: %w", err)
	}
	defer rows.Close()

	cc := &model.CategoryCounts{Table: table, Column: column}
	for rows.Next() {
		var value *string
		var freq int64
		if err := rows.Scan(&value, &freq); err != nil {
			return nil, err
		}
		if value == nil {
			cc.Counts = append(cc.Counts, model.CategoryCount{Null: true, Freq: freq})
			continue
		}
		cc.Counts = append(cc.Counts, model.CategoryCount{Value: *value, Freq: freq})
	}
	return cc, rows.Err()
}

// Scatter computes an in-database 2D histogram over two numeric or time
// columns. With opts.Grid the result is a dense zero-filled grid for
// heatmap rendering.
func (s *Store) Scatter(ctx context.Context, table model.TableRef, columnX, columnY string, opts model.ScatterOpts) (*model.Scatter, error) {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	kindX, kindY, err := scatterKinds(cols, columnX, columnY)
	if err != nil {
		return nil, err
	}

	query, err := sqlgen.Scatter(table, columnX, columnY, kindX, kindY, opts)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := s.pool.Query(qctx, query)
	observe("scatter", start, err)
	if err != nil {
		return nil, fmt.Errorf("scatter query: %w", err)
	}
	defer rows.Close()

	nx, ny := opts.NBinsX, opts.NBinsY
	if nx == 0 {
		nx = model.DefaultScatterBins
	}
	if ny == 0 {
		ny = model.DefaultScatterBins
	}

	sc := &model.Scatter{
		Table:   table,
		ColumnX: columnX,
		ColumnY: columnY,
		NBinsX:  nx,
		NBinsY:  ny,
		Grid:    opts.Grid,
	}
	for rows.Next() {
		var b model.ScatterBin
		if err := rows.Scan(&b.X, &b.Y, &b.Freq); err != nil {
			return nil, err
		}
		sc.Bins = append(sc.Bins, b)
	}
	return sc, rows.Err()
}

// scatterKinds resolves both axis kinds and rejects unsupported pairs.
// Both-categorical pairs go through CategoryPairs; mixed pairs are an
// explicit error rather than an empty result.
func scatterKinds(cols []model.Column, columnX, columnY string) (model.ColumnKind, model.ColumnKind, error) {
	kindOf := func(name string) (model.ColumnKind, error) {
		for _, c := range cols {
			if c.Name == name {
				return c.Kind, nil
			}
		}
		return 0, fmt.Errorf("column %q not found", name)
	}
	kindX, err := kindOf(columnX)
	if err != nil {
		return 0, 0, err
	}
	kindY, err := kindOf(columnY)
	if err != nil {
		return 0, 0, err
	}
	if kindX == model.KindCategory || kindY == model.KindCategory {
		if kindX == kindY {
			return 0, 0, fmt.Errorf("both columns are categorical; use category pairs")
		}
		return 0, 0, fmt.Errorf("cannot mix categorical and binnable columns in a scatter summary")
	}
	return kindX, kindY, nil
}

// CategoryPairs computes the cross-tabulation of two categorical columns.
func (s *Store) CategoryPairs(ctx context.Context, table model.TableRef, columnX, columnY string) ([]model.CategoryPair, error) {
	query, err := sqlgen.CategoryPairs(table, columnX, columnY)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := s.pool.Query(qctx, query)
	observe("category_pairs", start, err)
	if err != nil {
		return nil, fmt.Errorf("category pairs query: %w", err)
	}
	defer rows.Close()

	var pairs []model.CategoryPair
	for rows.Next() {
		var x, y *string
		var p model.CategoryPair
		if err := rows.Scan(&x, &y, &p.Freq); err != nil {
			return nil, err
		}
		if x != nil {
			p.ValueX = *x
		}
		if y != nil {
			p.ValueY = *y
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// ROCCurve computes an ROC curve in-database and its AUC client-side.
// labelColumn must contain 0/1 truth values.
func (s *Store) ROCCurve(ctx context.Context, table model.TableRef, labelColumn, scoreColumn string) (*model.ROCCurve, error) {
	query, err := sqlgen.ROCCurve(table, labelColumn, scoreColumn)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := s.pool.Query(qctx, query)
	observe("roc", start, err)
	if err != nil {
		return nil, fmt.Errorf("roc query: %w", err)
	}
	defer rows.Close()

	curve := &model.ROCCurve{Table: table, LabelColumn: labelColumn, ScoreColumn: scoreColumn}
	for rows.Next() {
		var p model.ROCPoint
		if err := rows.Scan(&p.Threshold, &p.TPR, &p.FPR); err != nil {
			return nil, err
		}
		curve.Points = append(curve.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	curve.AUC = stats.AUC(curve.Points)
	return curve, nil
}
