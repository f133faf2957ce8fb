package stats

import (
	"fmt"
	"time"

	"github.com/plotline-io/plotline/internal/model"
)

// Rebin folds a fine-grained histogram into nbins coarser bins. This lets
// one expensive warehouse query (say 1000 bins) be re-plotted at several
// resolutions without another round trip. Frequencies land in the target
// bin containing their source location; the maximum location folds into
// the last bin. The null bucket is carried through unchanged.
func Rebin(h *model.Histogram, nbins int) (*model.Histogram, error) {
	if nbins <= 0 {
		return nil, fmt.Errorf("nbins must be positive")
	}
	if len(h.Bins) <= nbins {
		return h, nil
	}

	minLoc := h.Bins[0].Loc
	maxLoc := h.Bins[len(h.Bins)-1].Loc
	span := maxLoc - minLoc

	out := &model.Histogram{
		Table:     h.Table,
		Column:    h.Column,
		Kind:      h.Kind,
		Bins:      make([]model.HistogramBin, nbins),
		NullCount: h.NullCount,
	}
	width := span / float64(nbins)
	for i := range out.Bins {
		out.Bins[i].Loc = minLoc + float64(i)*width
		if h.Kind == model.KindTime {
			out.Bins[i].TimeLoc = time.Unix(int64(out.Bins[i].Loc), 0).UTC()
		}
	}

	for _, b := range h.Bins {
		idx := 0
		if span > 0 {
			idx = int((b.Loc - minLoc) / span * float64(nbins))
			if idx >= nbins {
				idx = nbins - 1
			}
		}
		out.Bins[idx].Freq += b.Freq
	}
	return out, nil
}
