package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plotline-io/plotline/internal/model"
	"github.com/plotline-io/plotline/internal/summarycache"
)

// Response shapes. Bin locations for time columns carry both the epoch value
// and an RFC 3339 string so clients need no kind-specific parsing.

type binJSON struct {
	Loc     float64 `json:"loc"`
	TimeLoc string  `json:"time_loc,omitempty"`
	Freq    int64   `json:"freq"`
}

type categoryJSON struct {
	Value string `json:"value"`
	Null  bool   `json:"null,omitempty"`
	Freq  int64  `json:"freq"`
}

type histogramJSON struct {
	Table     string         `json:"table"`
	Column    string         `json:"column"`
	Kind      string         `json:"kind"`
	Bins      []binJSON      `json:"bins,omitempty"`
	NullCount int64          `json:"null_count"`
	Counts    []categoryJSON `json:"counts,omitempty"`
	Total     int64          `json:"total"`
}

type scatterJSON struct {
	Table   string   `json:"table"`
	ColumnX string   `json:"column_x"`
	ColumnY string   `json:"column_y"`
	NBinsX  int      `json:"nbins_x"`
	NBinsY  int      `json:"nbins_y"`
	Grid    bool     `json:"grid"`
	Bins    []binXYJ `json:"bins"`
}

type binXYJ struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Freq int64   `json:"freq"`
}

type categoryPairsJSON struct {
	Table   string             `json:"table"`
	ColumnX string             `json:"column_x"`
	ColumnY string             `json:"column_y"`
	Pairs   []categoryPairJSON `json:"pairs"`
}

type categoryPairJSON struct {
	ValueX string `json:"value_x"`
	ValueY string `json:"value_y"`
	Freq   int64  `json:"freq"`
}

type rocJSON struct {
	Table       string     `json:"table"`
	LabelColumn string     `json:"label_column"`
	ScoreColumn string     `json:"score_column"`
	Points      []rocPoint `json:"points"`
	AUC         float64    `json:"auc"`
}

type rocPoint struct {
	Threshold float64 `json:"threshold"`
	TPR       float64 `json:"tpr"`
	FPR       float64 `json:"fpr"`
}

type profileJSON struct {
	Table    string              `json:"table"`
	RowCount int64               `json:"row_count"`
	Columns  []profileColumnJSON `json:"columns"`
}

type profileColumnJSON struct {
	Name      string         `json:"name"`
	DataType  string         `json:"data_type"`
	Kind      string         `json:"kind"`
	Bins      []binJSON      `json:"bins,omitempty"`
	Counts    []categoryJSON `json:"counts,omitempty"`
	NullCount int64          `json:"null_count"`
}

func histogramToJSON(h *model.Histogram) histogramJSON {
	out := histogramJSON{
		Table:     h.Table.String(),
		Column:    h.Column,
		Kind:      h.Kind.String(),
		Bins:      binsToJSON(h.Kind, h.Bins),
		NullCount: h.NullCount,
		Total:     h.TotalFreq(),
	}
	return out
}

func binsToJSON(kind model.ColumnKind, bins []model.HistogramBin) []binJSON {
	out := make([]binJSON, len(bins))
	for i, b := range bins {
		out[i] = binJSON{Loc: b.Loc, Freq: b.Freq}
		if kind == model.KindTime {
			out[i].TimeLoc = b.TimeLoc.UTC().Format(time.RFC3339)
		}
	}
	return out
}

func categoriesToJSON(c *model.CategoryCounts) histogramJSON {
	out := histogramJSON{
		Table:  c.Table.String(),
		Column: c.Column,
		Kind:   model.KindCategory.String(),
	}
	for _, cc := range c.Counts {
		if cc.Null {
			out.NullCount = cc.Freq
		}
		out.Counts = append(out.Counts, categoryJSON{Value: cc.Value, Null: cc.Null, Freq: cc.Freq})
		out.Total += cc.Freq
	}
	return out
}

// Request shapes.

type tableRequest struct {
	Schema string `json:"schema"`
	Table  string `json:"table" binding:"required"`
}

func (r tableRequest) ref() model.TableRef {
	return model.TableRef{Schema: r.Schema, Table: r.Table}
}

type histogramRequest struct {
	tableRequest
	Column   string  `json:"column" binding:"required"`
	Bins     int     `json:"bins"`
	BinWidth float64 `json:"bin_width"`
}

type scatterRequest struct {
	tableRequest
	ColumnX string `json:"column_x" binding:"required"`
	ColumnY string `json:"column_y" binding:"required"`
	BinsX   int    `json:"bins_x"`
	BinsY   int    `json:"bins_y"`
	Grid    bool   `json:"grid"`
}

type rocRequest struct {
	tableRequest
	LabelColumn string `json:"label_column" binding:"required"`
	ScoreColumn string `json:"score_column" binding:"required"`
}

type profileRequest struct {
	tableRequest
	Bins int `json:"bins"`
}

// cached serves a summary through the result cache when one is configured.
// compute runs on a miss; its result is JSON-encoded both for the response
// and for the async cache write.
func (s *Server) cached(kind string, parts []string, compute func() (interface{}, error)) (json.RawMessage, error) {
	if s.cache == nil {
		v, err := compute()
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	fp := summarycache.Fingerprint(kind, parts...)
	if entry, ok, err := s.cache.Get(fp); err == nil && ok {
		return json.RawMessage(entry.Payload), nil
	}

	v, err := compute()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if s.cacheBuf != nil {
		s.cacheBuf.Put(&summarycache.Entry{
			Fingerprint: fp,
			Kind:        kind,
			Payload:     payload,
		})
	}
	return payload, nil
}

func writeRaw(c *gin.Context, payload json.RawMessage) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (s *Server) handleHistogram(c *gin.Context) {
	var req histogramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parts := []string{req.ref().String(), req.Column,
		strconv.Itoa(req.Bins), strconv.FormatFloat(req.BinWidth, 'g', -1, 64)}

	payload, err := s.cached("histogram", parts, func() (interface{}, error) {
		return s.computeHistogram(c, req)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeRaw(c, payload)
}

// computeHistogram picks the summary matching the column kind: categorical
// columns get value counts, numeric and time columns get binned frequencies.
func (s *Server) computeHistogram(c *gin.Context, req histogramRequest) (interface{}, error) {
	ctx := c.Request.Context()
	cols, err := s.warehouse.Columns(ctx, req.ref())
	if err != nil {
		return nil, err
	}
	for _, col := range cols {
		if col.Name != req.Column {
			continue
		}
		if col.Kind == model.KindCategory {
			counts, err := s.warehouse.CategoryCounts(ctx, req.ref(), req.Column)
			if err != nil {
				return nil, err
			}
			return categoriesToJSON(counts), nil
		}
		h, err := s.warehouse.Histogram(ctx, req.ref(), req.Column,
			model.BinOpts{NBins: req.Bins, BinWidth: req.BinWidth})
		if err != nil {
			return nil, err
		}
		return histogramToJSON(h), nil
	}
	return nil, fmt.Errorf("column %q not found in %s", req.Column, req.ref())
}

func (s *Server) handleScatter(c *gin.Context) {
	var req scatterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parts := []string{req.ref().String(), req.ColumnX, req.ColumnY,
		strconv.Itoa(req.BinsX), strconv.Itoa(req.BinsY), strconv.FormatBool(req.Grid)}

	payload, err := s.cached("scatter", parts, func() (interface{}, error) {
		return s.computeScatter(c, req)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeRaw(c, payload)
}

// computeScatter dispatches on the axis kinds: two categorical columns get
// a cross-tabulation, anything else goes through the binned 2D summary.
func (s *Server) computeScatter(c *gin.Context, req scatterRequest) (interface{}, error) {
	ctx := c.Request.Context()
	cols, err := s.warehouse.Columns(ctx, req.ref())
	if err != nil {
		return nil, err
	}
	kinds := make(map[string]model.ColumnKind, len(cols))
	for _, col := range cols {
		kinds[col.Name] = col.Kind
	}
	if kinds[req.ColumnX] == model.KindCategory && kinds[req.ColumnY] == model.KindCategory {
		pairs, err := s.warehouse.CategoryPairs(ctx, req.ref(), req.ColumnX, req.ColumnY)
		if err != nil {
			return nil, err
		}
		out := categoryPairsJSON{
			Table:   req.ref().String(),
			ColumnX: req.ColumnX,
			ColumnY: req.ColumnY,
			Pairs:   make([]categoryPairJSON, len(pairs)),
		}
		for i, p := range pairs {
			out.Pairs[i] = categoryPairJSON{ValueX: p.ValueX, ValueY: p.ValueY, Freq: p.Freq}
		}
		return out, nil
	}
	sc, err := s.warehouse.Scatter(ctx, req.ref(), req.ColumnX, req.ColumnY,
		model.ScatterOpts{NBinsX: req.BinsX, NBinsY: req.BinsY, Grid: req.Grid})
	if err != nil {
		return nil, err
	}
	out := scatterJSON{
		Table:   sc.Table.String(),
		ColumnX: sc.ColumnX,
		ColumnY: sc.ColumnY,
		NBinsX:  sc.NBinsX,
		NBinsY:  sc.NBinsY,
		Grid:    sc.Grid,
		Bins:    make([]binXYJ, len(sc.Bins)),
	}
	for i, b := range sc.Bins {
		out.Bins[i] = binXYJ{X: b.X, Y: b.Y, Freq: b.Freq}
	}
	return out, nil
}

func (s *Server) handleROC(c *gin.Context) {
	var req rocRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parts := []string{req.ref().String(), req.LabelColumn, req.ScoreColumn}

	payload, err := s.cached("roc", parts, func() (interface{}, error) {
		curve, err := s.warehouse.ROCCurve(c.Request.Context(), req.ref(), req.LabelColumn, req.ScoreColumn)
		if err != nil {
			return nil, err
		}
		out := rocJSON{
			Table:       curve.Table.String(),
			LabelColumn: curve.LabelColumn,
			ScoreColumn: curve.ScoreColumn,
			Points:      make([]rocPoint, len(curve.Points)),
			AUC:         curve.AUC,
		}
		for i, p := range curve.Points {
			out.Points[i] = rocPoint{Threshold: p.Threshold, TPR: p.TPR, FPR: p.FPR}
		}
		return out, nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeRaw(c, payload)
}

func (s *Server) handleProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parts := []string{req.ref().String(), strconv.Itoa(req.Bins)}

	payload, err := s.cached("profile", parts, func() (interface{}, error) {
		profile, err := s.warehouse.Profile(c.Request.Context(), req.ref(), model.BinOpts{NBins: req.Bins})
		if err != nil {
			return nil, err
		}
		out := profileJSON{
			Table:    profile.Table.String(),
			RowCount: profile.RowCount,
		}
		for _, pc := range profile.Columns {
			col := profileColumnJSON{
				Name:     pc.Column.Name,
				DataType: pc.Column.DataType,
				Kind:     pc.Column.Kind.String(),
			}
			if pc.Histogram != nil {
				col.Bins = binsToJSON(pc.Column.Kind, pc.Histogram.Bins)
				col.NullCount = pc.Histogram.NullCount
			}
			if pc.Categories != nil {
				for _, cc := range pc.Categories.Counts {
					if cc.Null {
						col.NullCount = cc.Freq
					}
					col.Counts = append(col.Counts, categoryJSON{Value: cc.Value, Null: cc.Null, Freq: cc.Freq})
				}
			}
			out.Columns = append(out.Columns, col)
		}
		return out, nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeRaw(c, payload)
}
