package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	identityHTTP "github.com/allisson/idgate/internal/identity/http"
	identityService "github.com/allisson/idgate/internal/identity/service"
	"github.com/allisson/idgate/internal/maintenance"
	"github.com/allisson/idgate/internal/metrics"
	"github.com/allisson/idgate/internal/servicetoken"
)

// Server represents the main HTTP server.
type Server struct {
	db     *sql.DB
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new HTTP server. The router is empty until SetupRouter
// is called.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterConfig carries the handlers and middleware dependencies for the
// request pipeline.
type RouterConfig struct {
	Gate            *maintenance.Gate
	SessionService  identityService.SessionService
	LoginHandler    *identityHTTP.LoginHandler
	UserInfoHandler *identityHTTP.UserInfoHandler
	ResetHandler    *servicetoken.ResetHandler

	// Login endpoint rate limiting.
	LoginRateLimitRPS   float64
	LoginRateLimitBurst int

	// CORS settings; disabled when CORSEnabled is false.
	CORSEnabled      bool
	CORSAllowOrigins string

	// MeterProvider enables HTTP metrics when non-nil.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// SetupRouter builds the request pipeline. Middleware order matters: the
// maintenance gate must see the session identity, so the optional session
// middleware runs before it, and everything runs after recovery and logging.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	router.Use(identityHTTP.OptionalSessionMiddleware(cfg.SessionService))
	router.Use(maintenance.Middleware(cfg.Gate, identityHTTP.GetUsername, s.logger))

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)
	router.GET(maintenance.MaintenancePath, maintenance.PageHandler())

	loginHandlers := []gin.HandlerFunc{cfg.LoginHandler.Login}
	if cfg.LoginRateLimitRPS > 0 {
		loginHandlers = append(
			[]gin.HandlerFunc{identityHTTP.LoginRateLimitMiddleware(cfg.LoginRateLimitRPS, cfg.LoginRateLimitBurst, s.logger)},
			loginHandlers...,
		)
	}
	router.POST("/v1/login", loginHandlers...)

	router.GET("/v1/userinfo",
		identityHTTP.SessionMiddleware(cfg.SessionService, s.logger),
		cfg.UserInfoHandler.GetUserInfo,
	)

	router.GET("/reset-cache/service-token", cfg.ResetHandler.Reset)

	s.router = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. The database
// is the only hard dependency checked here; the upstream identity API is
// reached lazily and its failures surface per-request.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server. SetupRouter must have been called first.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
