package stats

import "github.com/plotline-io/plotline/internal/model"

// HistogramWeights converts bin frequencies to plot weights. When normed
// is true the weights (including the null bucket) sum to 1, which makes
// columns of different sizes comparable on one chart; otherwise the raw
// frequencies are returned.
func HistogramWeights(h *model.Histogram, normed bool) (weights []float64, nullWeight float64) {
	weights = make([]float64, len(h.Bins))
	if !normed {
		for i, b := range h.Bins {
			weights[i] = float64(b.Freq)
		}
		return weights, float64(h.NullCount)
	}

	total := h.TotalFreq()
	if total == 0 {
		return weights, 0
	}
	for i, b := range h.Bins {
		weights[i] = float64(b.Freq) / float64(total)
	}
	return weights, float64(h.NullCount) / float64(total)
}

// CategoryWeights converts category frequencies to plot weights, with the
// same normed semantics as HistogramWeights.
func CategoryWeights(counts []model.CategoryCount, normed bool) []float64 {
	weights := make([]float64, len(counts))
	var total int64
	for _, c := range counts {
		total += c.Freq
	}
	for i, c := range counts {
		if normed && total > 0 {
			weights[i] = float64(c.Freq) / float64(total)
		} else {
			weights[i] = float64(c.Freq)
		}
	}
	return weights
}
