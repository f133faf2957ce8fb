// Package stats holds the small client-side arithmetic applied to summary
// rows after they come back from the warehouse. Everything here operates
// on O(bins) slices; the heavy lifting already happened in SQL.
package stats

import "github.com/plotline-io/plotline/internal/model"

// AUC computes the area under an ROC curve with the trapezoid rule: the
// average of consecutive TPRs times the FPR step, summed over the curve.
// Points must be ordered by (tpr, fpr), as the ROC query returns them.
func AUC(points []model.ROCPoint) float64 {
	var auc float64
	for i := 1; i < len(points); i++ {
		avgHeight := (points[i].TPR + points[i-1].TPR) / 2
		width := points[i].FPR - points[i-1].FPR
		auc += avgHeight * width
	}
	return auc
}
