// Package server assembles the HTTP API from the domain services.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yantrahq/yantra/internal/api/handlers"
	"github.com/yantrahq/yantra/internal/api/middleware"
	"github.com/yantrahq/yantra/internal/config"
	"github.com/yantrahq/yantra/internal/leaderboard"
	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/roundgate"
	"github.com/yantrahq/yantra/internal/server/routes"
	"github.com/yantrahq/yantra/internal/service"
	"github.com/yantrahq/yantra/internal/session"
	"github.com/yantrahq/yantra/internal/telemetry"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

// Services are the domain components the API serves.
type Services struct {
	Identity    *service.IdentityService
	Teams       *service.TeamService
	Submissions *service.SubmissionService
	Sessions    *session.Manager
	Gate        *roundgate.Gate
	Leaderboard *leaderboard.Projector
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	cfg    *config.Config
	logger *logging.Logger
}

// NewServer creates a new server instance with all routes mounted
func NewServer(cfg *config.Config, svc Services, logger *logging.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Gin's own logger is replaced by RequestLogger
	gin.DisableConsoleColor()
	gin.DefaultWriter = io.Discard

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.RemoteIPHeaders = []string{"X-Real-IP", "X-Forwarded-For"}
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn("Ignoring TRUSTED_PROXIES: %v", err)
		_ = router.SetTrustedProxies(nil)
	}

	routes.SetupGlobalMiddleware(router, routes.GlobalOptions{
		Logger:         logger,
		ServiceName:    telemetry.ServiceName,
		LogRequests:    cfg.LogRequests,
		Development:    cfg.IsDevelopment(),
		Production:     cfg.IsProduction(),
		AllowedOrigins: cfg.AllowedHosts,
		RateLimit: middleware.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		},
	})

	binder := svc.Sessions.Binder()
	h := &routes.Handlers{
		Auth:        handlers.NewAuthHandler(svc.Identity, cfg.IsProduction()),
		Health:      handlers.NewHealthHandler(svc.Gate),
		Team:        handlers.NewTeamHandler(svc.Teams, binder, logger),
		Leaderboard: handlers.NewLeaderboardHandler(svc.Leaderboard),
		Dashboard:   handlers.NewDashboardHandler(svc.Gate, svc.Leaderboard),
		Submission:  handlers.NewSubmissionHandler(svc.Submissions, binder, cfg.MaxSubmissionBytes(), logger),
	}
	m := &routes.Middleware{
		Validation: middleware.NewValidationMiddleware(),
		Auth:       middleware.NewAuthMiddleware(svc.Sessions),
	}
	routes.Setup(router, h, m)

	return &Server{router: router, cfg: cfg, logger: logger}
}

// Handler returns the HTTP handler of the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}
