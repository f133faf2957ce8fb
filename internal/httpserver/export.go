package httpserver

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"

	"github.com/plotline-io/plotline/internal/model"
)

type exportRequest struct {
	Kind string `json:"kind" binding:"required"` // histogram, scatter or roc
	tableRequest
	Column      string `json:"column"`
	Bins        int    `json:"bins"`
	ColumnX     string `json:"column_x"`
	ColumnY     string `json:"column_y"`
	BinsX       int    `json:"bins_x"`
	BinsY       int    `json:"bins_y"`
	Grid        bool   `json:"grid"`
	LabelColumn string `json:"label_column"`
	ScoreColumn string `json:"score_column"`
}

// handleExport streams one summary as a gzip-compressed CSV attachment.
func (s *Server) handleExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	header, rows, err := s.exportRows(c, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("%s_%s.csv.gz", req.Kind, req.Table)
	c.Header("Content-Type", "application/gzip")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	zw := gzip.NewWriter(c.Writer)
	defer zw.Close()
	w := csv.NewWriter(zw)
	defer w.Flush()

	w.Write(header)
	for _, row := range rows {
		w.Write(row)
	}
}

func (s *Server) exportRows(c *gin.Context, req exportRequest) ([]string, [][]string, error) {
	ctx := c.Request.Context()

	switch req.Kind {
	case "histogram":
		if req.Column == "" {
			return nil, nil, fmt.Errorf("histogram export needs a column")
		}
		h, err := s.warehouse.Histogram(ctx, req.ref(), req.Column, model.BinOpts{NBins: req.Bins})
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(h.Bins)+1)
		for _, b := range h.Bins {
			loc := strconv.FormatFloat(b.Loc, 'g', -1, 64)
			if h.Kind == model.KindTime {
				loc = b.TimeLoc.UTC().Format(time.RFC3339)
			}
			rows = append(rows, []string{loc, strconv.FormatInt(b.Freq, 10)})
		}
		if h.NullCount > 0 {
			rows = append(rows, []string{"", strconv.FormatInt(h.NullCount, 10)})
		}
		return []string{"bin_loc", "freq"}, rows, nil

	case "scatter":
		if req.ColumnX == "" || req.ColumnY == "" {
			return nil, nil, fmt.Errorf("scatter export needs column_x and column_y")
		}
		sc, err := s.warehouse.Scatter(ctx, req.ref(), req.ColumnX, req.ColumnY,
			model.ScatterOpts{NBinsX: req.BinsX, NBinsY: req.BinsY, Grid: req.Grid})
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, len(sc.Bins))
		for i, b := range sc.Bins {
			rows[i] = []string{
				strconv.FormatFloat(b.X, 'g', -1, 64),
				strconv.FormatFloat(b.Y, 'g', -1, 64),
				strconv.FormatInt(b.Freq, 10),
			}
		}
		return []string{"bin_loc_x", "bin_loc_y", "freq"}, rows, nil

	case "roc":
		if req.LabelColumn == "" || req.ScoreColumn == "" {
			return nil, nil, fmt.Errorf("roc export needs label_column and score_column")
		}
		curve, err := s.warehouse.ROCCurve(ctx, req.ref(), req.LabelColumn, req.ScoreColumn)
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, len(curve.Points))
		for i, p := range curve.Points {
			rows[i] = []string{
				strconv.FormatFloat(p.Threshold, 'g', -1, 64),
				strconv.FormatFloat(p.TPR, 'g', -1, 64),
				strconv.FormatFloat(p.FPR, 'g', -1, 64),
			}
		}
		return []string{"threshold", "tpr", "fpr"}, rows, nil

	default:
		return nil, nil, fmt.Errorf("unknown export kind %q", req.Kind)
	}
}
