package stats

import (
	"fmt"
	"sort"

	"github.com/plotline-io/plotline/internal/model"
)

// NullPlacement controls where a NULL category bucket lands when merged
// series are ordered.
type NullPlacement int

const (
	// NullLeft places the NULL bucket first.
	NullLeft NullPlacement = iota
	// NullRight places the NULL bucket last.
	NullRight
	// NullDrop omits the NULL bucket entirely.
	NullDrop
)

// OrderBy selects how merged categories are sorted. OrderAlphabetical
// sorts by category value; a non-negative series index sorts by that
// series' frequency.
const OrderAlphabetical = -1

// MergedCategory is one category row across every merged series.
type MergedCategory struct {
	Value string
	Null  bool
	Freqs []int64 // one entry per input series, zero-filled where absent
}

// MergeCategories outer-joins category counts from several summaries so
// the same category lines up across series; categories missing from a
// series get frequency zero. orderBy is OrderAlphabetical or the index of
// the series whose frequency drives the sort.
func MergeCategories(series []*model.CategoryCounts, orderBy int, ascending bool, nullAt NullPlacement) ([]MergedCategory, error) {
	if orderBy != OrderAlphabetical && (orderBy < 0 || orderBy >= len(series)) {
		return nil, fmt.Errorf("order_by series index %d out of range", orderBy)
	}

	index := make(map[string]*MergedCategory)
	var nullRow *MergedCategory
	var order []string // insertion order of first appearance

	for i, s := range series {
		for _, c := range s.Counts {
			if c.Null {
				if nullRow == nil {
					nullRow = &MergedCategory{Null: true, Freqs: make([]int64, len(series))}
				}
				nullRow.Freqs[i] += c.Freq
				continue
			}
			row, ok := index[c.Value]
			if !ok {
				row = &MergedCategory{Value: c.Value, Freqs: make([]int64, len(series))}
				index[c.Value] = row
				order = append(order, c.Value)
			}
			row.Freqs[i] += c.Freq
		}
	}

	merged := make([]MergedCategory, 0, len(order)+1)
	for _, v := range order {
		merged = append(merged, *index[v])
	}

	if orderBy == OrderAlphabetical {
		sort.Slice(merged, func(i, j int) bool {
			if ascending {
				return merged[i].Value < merged[j].Value
			}
			return merged[i].Value > merged[j].Value
		})
	} else {
		sort.SliceStable(merged, func(i, j int) bool {
			if ascending {
				return merged[i].Freqs[orderBy] < merged[j].Freqs[orderBy]
			}
			return merged[i].Freqs[orderBy] > merged[j].Freqs[orderBy]
		})
	}

	if nullRow != nil {
		switch nullAt {
		case NullLeft:
			merged = append([]MergedCategory{*nullRow}, merged...)
		case NullRight:
			merged = append(merged, *nullRow)
		case NullDrop:
		}
	}
	return merged, nil
}
