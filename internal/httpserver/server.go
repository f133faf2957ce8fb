// Package httpserver exposes warehouse summaries over a JSON API.
package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plotline-io/plotline/internal/model"
	"github.com/plotline-io/plotline/internal/summarycache"
)

// Server provides an HTTP API for warehouse summaries.
type Server struct {
	addr      string
	warehouse model.Warehouse
	cache     *summarycache.Store
	cacheBuf  *summarycache.WriteBuffer
	jwtSecret string
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// Option configures optional server features.
type Option func(*Server)

// WithCache routes summary responses through the local result cache.
func WithCache(store *summarycache.Store, buf *summarycache.WriteBuffer) Option {
	return func(s *Server) {
		s.cache = store
		s.cacheBuf = buf
	}
}

// WithJWTSecret enables bearer-token auth on the /api routes.
// Health and metrics stay open.
func WithJWTSecret(secret string) Option {
	return func(s *Server) { s.jwtSecret = secret }
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, warehouse model.Warehouse, opts ...Option) *Server {
	if addr == "" {
		addr = "0.0.0.0:3000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr:      addr,
		warehouse: warehouse,
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// routes builds the gin engine; split out so tests can drive it directly.
func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if s.jwtSecret != "" {
		api.Use(requireBearer(s.jwtSecret))
	}
	api.GET("/schema", s.handleSchema)
	api.POST("/histogram", s.handleHistogram)
	api.POST("/scatter", s.handleScatter)
	api.POST("/roc", s.handleROC)
	api.POST("/profile", s.handleProfile)
	api.POST("/query", s.handleQuery)
	api.POST("/export", s.handleExport)

	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	}

	if err := s.warehouse.Ping(c.Request.Context()); err != nil {
		resp["status"] = "degraded"
		resp["warehouse"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp["warehouse"] = "ok"

	if s.cache != nil {
		if n, err := s.cache.EntryCount(); err == nil {
			resp["cached_summaries"] = n
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSchema(c *gin.Context) {
	ctx := c.Request.Context()
	schema := c.DefaultQuery("schema", "public")

	tables, err := s.warehouse.ListTables(ctx, schema)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read schema metadata"})
		return
	}

	out := make(map[string][]gin.H, len(tables))
	rowCounts := make(map[string]int64, len(tables))
	for _, t := range tables {
		cols, err := s.warehouse.Columns(ctx, t)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read columns for " + t.String()})
			return
		}
		for _, col := range cols {
			out[t.String()] = append(out[t.String()], gin.H{
				"column": col.Name,
				"type":   col.DataType,
				"kind":   col.Kind.String(),
			})
		}
		if n, err := s.warehouse.TableRowCount(ctx, t); err == nil {
			rowCounts[t.String()] = n
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"description": s.warehouse.GetSchemaDescription(),
		"tables":      out,
		"row_counts":  rowCounts,
	})
}

func (s *Server) handleQuery(c *gin.Context) {
	var req struct {
		SQL string `json:"sql" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing sql field"})
		return
	}

	results, err := s.warehouse.ExecuteQuery(c.Request.Context(), req.SQL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var columns []string
	if len(results) > 0 {
		for col := range results[0] {
			columns = append(columns, col)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"columns":   columns,
		"rows":      results,
		"row_count": len(results),
	})
}
