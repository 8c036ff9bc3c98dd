package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dtroode/tokenkeeper/internal/api/http/handler"
	"github.com/dtroode/tokenkeeper/internal/api/http/middleware"
	"github.com/dtroode/tokenkeeper/internal/logger"
)

const serviceName = "tokenkeeper"

// Router wires the HTTP routes and their middlewares.
type Router struct {
	authService    handler.AuthService
	tokenService   middleware.TokenService
	dependencies   map[string]handler.Pinger
	requestTimeout time.Duration
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	authService handler.AuthService,
	tokenService middleware.TokenService,
	dependencies map[string]handler.Pinger,
	requestTimeout time.Duration,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		tokenService:   tokenService,
		dependencies:   dependencies,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// Register builds the fiber app with all routes attached.
func (r *Router) Register() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          handler.NewErrorHandler(r.logger),
	})

	if r.requestTimeout > 0 {
		app.Use(middleware.RequestTimeout(r.requestTimeout))
	}
	app.Use(middleware.RequestLogger(r.logger))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			r.logger.Error("HTTP handler panicked",
				"path", c.Path(),
				"panic", e)
		},
	}))

	health := handler.NewHealth(serviceName, r.dependencies)
	app.Get("/health/live", health.Live)
	app.Get("/health/ready", health.Ready)

	auth := handler.NewAuth(r.authService, r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.logger)

	api := app.Group("/api/v1/auth")
	api.Post("/register", auth.Register)
	api.Post("/login", auth.Login)
	api.Post("/refresh", auth.Refresh)

	protected := api.Group("", authenticate.Handle)
	protected.Post("/revoke", auth.Revoke)
	protected.Post("/revoke-all", auth.RevokeAll)
	protected.Get("/me", auth.Me)

	return app
}
