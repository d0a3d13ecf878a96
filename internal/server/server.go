// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/ai"
	"github.com/spigell/tender-bid/internal/catalog"
	"github.com/spigell/tender-bid/internal/discovery"
	"github.com/spigell/tender-bid/internal/pipeline"
	"github.com/spigell/tender-bid/internal/policy"
	"github.com/spigell/tender-bid/internal/tender"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	maxBodyBytes    = 4 << 20
	shutdownTimeout = 10 * time.Second
)

// Evaluator runs the pipeline for a candidate pool.
type Evaluator interface {
	Run(ctx context.Context, candidates *tender.Tenders) *pipeline.Record
}

// Options wire the handlers. Narrator and OnRecord are optional.
type Options struct {
	Addr      string
	Evaluator Evaluator
	Catalog   *catalog.Catalog
	Policy    *policy.Policy
	Narrator  ai.Narrator
	// OnRecord is called with every finished record, e.g. to export it.
	OnRecord func(*pipeline.Record)
}

type Server struct {
	opts   Options
	engine *gin.Engine
	logger *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Policy == nil {
		opts.Policy = policy.Default()
	}

	s := &Server{opts: opts, logger: logger}

	engine := gin.New()
	engine.Use(requestID(), s.accessLog(), gin.Recovery())

	engine.GET("/healthz", s.health)
	v1 := engine.Group("/api/v1")
	v1.POST("/evaluate", s.evaluate)
	v1.GET("/catalog", s.catalog)
	v1.GET("/policy", s.policy)

	s.engine = engine
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve listens on the configured address until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.opts.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) catalog(c *gin.Context) {
	if s.opts.Catalog == nil {
		s.fail(c, http.StatusServiceUnavailable, "catalog is not loaded")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source":   s.opts.Catalog.Source,
		"products": s.opts.Catalog.Products(),
	})
}

func (s *Server) policy(c *gin.Context) {
	c.JSON(http.StatusOK, s.opts.Policy)
}

func (s *Server) evaluate(c *gin.Context) {
	if s.opts.Evaluator == nil {
		s.fail(c, http.StatusServiceUnavailable, "pipeline is not configured")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		s.fail(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	candidates, err := discovery.Parse(body, discovery.KindAPI)
	if err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Sprintf("invalid tenders payload: %v", err))
		return
	}

	ctx := c.Request.Context()
	rec := s.opts.Evaluator.Run(ctx, candidates)
	ai.Annotate(ctx, s.opts.Narrator, rec, s.logger)
	if s.opts.OnRecord != nil {
		s.opts.OnRecord(rec)
	}

	c.JSON(http.StatusOK, rec)
}

func (s *Server) fail(c *gin.Context, status int, message string) {
	s.logger.Warn("request failed",
		zap.String(requestIDKey, c.GetString(requestIDKey)),
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("error", message),
	)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String(requestIDKey, c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
