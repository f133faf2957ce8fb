package warehouse

import (
	"context"
	"sync"

	"github.com/plotline-io/plotline/internal/model"
	"golang.org/x/sync/errgroup"
)

// Profile summarizes every column of a table in one pass: histograms for
// numeric and time columns, category counts for the rest. Columns are
// summarized concurrently; the store's query semaphore bounds the load on
// the warehouse. Category lists are capped at DefaultProfileLimit buckets
// so a high-cardinality column cannot blow up the profile.
func (s *Store) Profile(ctx context.Context, table model.TableRef, opts model.BinOpts) (*model.TableProfile, error) {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return nil, err
	}

	rowCount, err := s.TableRowCount(ctx, table)
	if err != nil {
		return nil, err
	}

	profile := &model.TableProfile{
		Table:    table,
		RowCount: rowCount,
		Columns:  make([]model.ColumnProfile, len(cols)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for i, col := range cols {
		g.Go(func() error {
			entry := model.ColumnProfile{Column: col}
			switch col.Kind {
			case model.KindCategory:
				cc, err := s.CategoryCounts(gctx, table, col.Name)
				if err != nil {
					return err
				}
				if len(cc.Counts) > model.DefaultProfileLimit {
					cc.Counts = cc.Counts[:model.DefaultProfileLimit]
				}
				entry.Categories = cc
			default:
				h, err := s.histogramForKind(gctx, table, col.Name, col.Kind, opts)
				if err != nil {
					return err
				}
				entry.Histogram = h
			}

			mu.Lock()
			profile.Columns[i] = entry
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profile, nil
}
