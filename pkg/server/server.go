// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shortlist-ai/shortlist/pkg/config"
	"github.com/shortlist-ai/shortlist/pkg/pipeline"
	"github.com/shortlist-ai/shortlist/pkg/store"
)

// Server is the HTTP front end.
type Server struct {
	settings config.Settings
	pipeline *pipeline.Pipeline
	store    *store.Store
	logger   *zap.Logger
	metrics  *metrics
	router   *gin.Engine
}

// New creates the server and builds its routes.
func New(settings config.Settings, p *pipeline.Pipeline, st *store.Store, logger *zap.Logger) (s *Server) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s = &Server{
		settings: settings,
		pipeline: p,
		store:    st,
		logger:   logger,
		metrics:  newMetrics(),
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter assembles middleware and routes.
func (s *Server) buildRouter() (router *gin.Engine) {
	router = gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger))
	router.Use(s.metrics.middleware())
	router.Use(securityHeaders(s.settings.IsProduction()))
	router.Use(maxBodySize(s.settings.MaxRequestSizeMB * 1024 * 1024))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.settings.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", s.metrics.handler())

	limiter := newRateLimiter(s.settings.RateLimitPerMinute)
	v1 := router.Group("/api/v1")
	v1.Use(limiter.middleware())
	{
		v1.POST("/analyze", s.handleAnalyze)
		v1.POST("/scorecard", s.handleScorecard)
		v1.POST("/scaffold", s.handleScaffold)
		v1.POST("/portfolio", s.handlePortfolio)
		v1.POST("/fitness", s.handleFitness)
		v1.GET("/results", s.handleListResults)
		v1.GET("/results/:id", s.handleGetResult)
		v1.DELETE("/results/:id", s.handleDeleteResult)
		v1.GET("/company-types", s.handleCompanyTypes)
	}

	return router
}

// Handler exposes the router for tests.
func (s *Server) Handler() (handler http.Handler) {
	handler = s.router
	return handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) (err error) {
	httpServer := &http.Server{
		Addr:              s.settings.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("server listening", zap.String("addr", s.settings.ListenAddr))

	select {
	case err = <-errCh:
		err = errors.Wrap(err, "server failed")
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = httpServer.Shutdown(shutdownCtx)
	if err != nil {
		err = errors.Wrap(err, "graceful shutdown failed")
		return err
	}

	s.logger.Info("server stopped")
	return err
}

// contextWithTimeout derives a bounded context from a request.
func contextWithTimeout(c *gin.Context, d time.Duration) (ctx context.Context, cancel context.CancelFunc) {
	ctx, cancel = context.WithTimeout(c.Request.Context(), d)
	return ctx, cancel
}
