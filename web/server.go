package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bakai-assistant/category"
	"bakai-assistant/config"
	"bakai-assistant/web/handlers"
	"bakai-assistant/web/middleware"
	"bakai-assistant/web/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies are the components the HTTP API is wired to. Reindex and
// History may be nil.
type Dependencies struct {
	Query   *services.QueryService
	Reindex *services.ReindexService
	Stats   handlers.StatsProvider
	Links   *category.Links
	History handlers.QueryHistory
}

type Server struct {
	router  *gin.Engine
	deps    Dependencies
	limiter *middleware.ClientRateLimiter
	logger  *zap.Logger
	config  *config.Config
}

func NewServer(deps Dependencies, logger *zap.Logger, config *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger))

	server := &Server{
		router: router,
		deps:   deps,
		limiter: middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerMinute: config.RateLimitRequestsPerMin,
			BurstSize:         config.RateLimitBurstSize,
			CleanupInterval:   config.RateLimitCleanupInterval,
		}, logger),
		logger: logger,
		config: config,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	queryHandler := handlers.NewQueryHandler(s.deps.Query)
	adminHandler := handlers.NewAdminHandler(s.deps.Reindex, s.deps.Stats, s.deps.Links, s.deps.History)

	s.router.GET("/healthz", adminHandler.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.POST("/query", middleware.RateLimitMiddleware(s.limiter), queryHandler.Resolve)
	api.POST("/categorize", middleware.RateLimitMiddleware(s.limiter), queryHandler.Categorize)
	api.GET("/categories", adminHandler.Categories)
	api.GET("/stats", adminHandler.Stats)
	api.GET("/queries", adminHandler.RecentQueries)
	api.POST("/reindex", adminHandler.Reindex)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases background resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))
	defer s.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Web server failed to start", zap.Error(err))
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	s.logger.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
