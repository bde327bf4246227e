package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"example.com/chronos/backend/internal/ai"
	"example.com/chronos/backend/internal/config"
	"example.com/chronos/backend/internal/handlers"
	"example.com/chronos/backend/internal/ratelimit"
)

// New assembles the conventional deployment: one URL path per AI action,
// CORS restricted to the configured browser origins.
func New(cfg config.Config, logger *slog.Logger, generator ai.Generator) *echo.Echo {
	e, aiHandler := newBase(cfg, logger, generator)

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowCredentials: true,
	}))

	registerRoutes(e, aiHandler)
	return e
}

// NewFunction assembles the serverless-style deployment: a single endpoint
// dispatching on an action discriminant, with permissive CORS and preflight
// handling the way a function shim exposes it.
func NewFunction(cfg config.Config, logger *slog.Logger, generator ai.Generator) *echo.Echo {
	e, aiHandler := newBase(cfg, logger, generator)

	e.Use(permissiveCORS())

	registerFunctionRoutes(e, aiHandler)
	return e
}

func newBase(cfg config.Config, logger *slog.Logger, generator ai.Generator) (*echo.Echo, *handlers.AIHandler) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	service := ai.NewService(generator, limiter, cfg.AI.Timeout)
	aiHandler := handlers.NewAIHandler(service, limiter.RetryAfter())

	return e, aiHandler
}

// NewHTTPServer creates a net/http server with the configured timeouts.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// permissiveCORS mirrors the function-platform contract: every response
// carries open CORS headers and preflight requests get a plain 200.
func permissiveCORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			header.Set(echo.HeaderAccessControlAllowOrigin, "*")
			header.Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)
			header.Set(echo.HeaderAccessControlAllowMethods, "POST, OPTIONS")

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}

			return next(c)
		}
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}
