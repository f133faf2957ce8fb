package render

import (
	"fmt"
	"math"
	"time"

	"github.com/plotline-io/plotline/internal/model"
)

// FormatCount renders a frequency for an axis label. On a log10 scale counts
// are shown as powers of ten ("1e3") so the magnitude reads at a glance.
func FormatCount(v float64, log10 bool) string {
	if log10 {
		if v <= 0 {
			return "0"
		}
		return fmt.Sprintf("1e%d", int(math.Ceil(math.Log10(v))))
	}
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.3g", v)
}

// FormatLoc renders a bin location for the given column kind.
func FormatLoc(kind model.ColumnKind, bin model.HistogramBin) string {
	if kind == model.KindTime {
		return bin.TimeLoc.UTC().Format(time.DateTime)
	}
	return fmt.Sprintf("%.4g", bin.Loc)
}

// logValue maps a raw frequency onto a log10 bar height. Counts of zero stay
// at zero; a count of one gets a small positive height so it is still visible.
func logValue(freq float64) float64 {
	if freq <= 0 {
		return 0
	}
	if freq < 10 {
		return freq / 10
	}
	return math.Log10(freq)
}
