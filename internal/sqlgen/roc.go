package sqlgen

import (
	"fmt"

	"github.com/plotline-io/plotline/internal/model"
)

// ROCCurve returns the SQL computing an ROC curve entirely in-database.
// labelColumn must hold 0/1 truth values and scoreColumn the classifier
// scores. The query yields one row per distinct threshold with its true
// and false positive rates, ordered by (tpr, fpr).
//
// The window sums use the default RANGE frame, so rows tied on score share
// the same cumulative counts and DISTINCT collapses them to one threshold.
func ROCCurve(table model.TableRef, labelColumn, scoreColumn string) (string, error) {
	tbl, err := QuoteTable(table)
	if err != nil {
		return "", err
	}
	label, err := QuoteColumn(labelColumn)
	if err != nil {
		return "", err
	}
	score, err := QuoteColumn(scoreColumn)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		WITH class_sizes AS (
			SELECT sum(%[1]s)::numeric AS tot_pos, sum(1 - %[1]s)::numeric AS tot_neg
			FROM %[3]s
		), pre_roc AS (
			SELECT %[2]s AS threshold,
				sum(%[1]s) OVER (ORDER BY %[2]s DESC) AS num_pos,
				sum(1 - %[1]s) OVER (ORDER BY %[2]s DESC) AS num_neg
			FROM %[3]s
		)
		SELECT DISTINCT threshold,
			num_pos / tot_pos AS tpr,
			num_neg / tot_neg AS fpr
		FROM pre_roc, class_sizes
		ORDER BY tpr, fpr`, label, score, tbl)
	return query, nil
}
