// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cv_bank_backend/internal/auth"
	"cv_bank_backend/internal/config"
	"cv_bank_backend/internal/guard"
	"cv_bank_backend/internal/jobs"
	"cv_bank_backend/internal/middleware"
	"cv_bank_backend/internal/profile"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	gateway        auth.Gateway
	authHandler    *auth.Handler
	profileHandler *profile.Handler

	sessionPurgeJob *jobs.SessionPurgeJob

	// unsubscribeAuthEvents detaches the audit observer on shutdown.
	unsubscribeAuthEvents func()
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	gateway auth.Gateway,
	authHandler *auth.Handler,
	profileHandler *profile.Handler,
	sessionPurgeJob *jobs.SessionPurgeJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.SessionAuth(gateway, logger.Named("SessionAuth"))
	adminRoleMW := middleware.RequireClass(guard.AuthenticatedAdmin)

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "CV Bank API is healthy!"})
	})

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1, authMW)
	profileHandler.RegisterRoutes(v1, authMW, adminRoleMW)

	// Unknown paths land on the caller's home per the access guard.
	router.NoRoute(middleware.NoRoute(gateway, logger.Named("NoRoute")))

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:      httpServer,
		router:          router,
		cfg:             cfg,
		logger:          logger,
		gateway:         gateway,
		authHandler:     authHandler,
		profileHandler:  profileHandler,
		sessionPurgeJob: sessionPurgeJob,
	}, nil
}

// Router exposes the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start boots the background jobs, subscribes the audit observer and serves
// HTTP until shutdown.
func (s *Server) Start() error {
	auditLogger := s.logger.Named("auth-audit")
	s.unsubscribeAuthEvents = s.gateway.OnAuthStateChange(func(ev auth.Event) {
		fields := []zap.Field{zap.String("event", string(ev.Kind))}
		if ev.State != nil {
			fields = append(fields,
				zap.String("userID", ev.State.UserID.String()),
				zap.String("role", ev.State.Role),
			)
		}
		auditLogger.Info("Auth state changed", fields...)
	})

	if s.sessionPurgeJob != nil {
		if err := s.sessionPurgeJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start session purge job", zap.Error(err))
		}
	} else {
		s.logger.Info("Session purge job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("backend", s.cfg.Backend),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

// Shutdown stops the jobs, detaches observers and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.unsubscribeAuthEvents != nil {
		s.unsubscribeAuthEvents()
		s.unsubscribeAuthEvents = nil
	}
	if s.sessionPurgeJob != nil {
		s.sessionPurgeJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// EnsureBootstrapAdmin seeds the reserved administrator account. Called from
// main before the server starts accepting traffic.
func (s *Server) EnsureBootstrapAdmin(ctx context.Context) error {
	if err := s.gateway.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap administrator provisioning failed: %w", err)
	}
	return nil
}

