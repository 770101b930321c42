package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gel-tracker/internal/core/config"
	"gel-tracker/internal/core/logger"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "gel-tracker/docs/swagger"
)

// RayIDHeader carries the per-request identifier.
const RayIDHeader = "X-Ray-ID"

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type namedCheck struct {
	name  string
	check HealthCheck
}

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg *config.AppConfig

	metrics http.Handler
	checks  []namedCheck
	limiter *rateLimiter
}

// Option customizes a Server.
type Option func(*Server)

// WithMetrics exposes h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithHealthCheck adds a dependency check to /health.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Server) {
		s.checks = append(s.checks, namedCheck{name: name, check: check})
	}
}

// New creates a new Server instance with configured middleware and the
// operational routes (/ping, /health, /metrics, /swagger).
func New(cfg *config.AppConfig, opts ...Option) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               logger.ServiceName,
	})

	app.Use(requestid.New(requestid.Config{
		Header: RayIDHeader,
	}))

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: "GET,OPTIONS",
	}))

	s := &Server{
		App: app,
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Server.RateLimitRPS > 0 {
		s.limiter = newRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	}

	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/health", s.health)
	if s.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(s.metrics))
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	if cfg.Server.StaticDir != "" {
		app.Static("/", cfg.Server.StaticDir)
	}

	return s
}

// RateLimit returns the per-client limiter middleware, or a pass-through
// handler when limiting is disabled.
func (s *Server) RateLimit() fiber.Handler {
	if s.limiter == nil {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	return s.limiter.handler()
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// health godoc
// @Summary Service health
// @Description Reports the status of the service and its optional dependencies.
// @Tags ops
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (s *Server) health(c *fiber.Ctx) error {
	resp := HealthResponse{Status: "ok"}
	if len(s.checks) == 0 {
		return c.JSON(resp)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	resp.Checks = make(map[string]string, len(s.checks))
	for _, nc := range s.checks {
		if err := nc.check(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks[nc.name] = err.Error()
			continue
		}
		resp.Checks[nc.name] = "ok"
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	logger.Get().Info("Starting server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight lookups until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}

// RayID returns the request identifier assigned by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
