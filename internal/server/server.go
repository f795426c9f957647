// Package server assembles the API's Fiber application.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"laptopcatalog/internal/graph"
	"laptopcatalog/internal/handlers"
	"laptopcatalog/internal/metrics"
	"laptopcatalog/internal/middleware"
	"laptopcatalog/internal/services"
)

// Options configures NewApp.
type Options struct {
	Service     *services.LaptopService
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	Debug       bool
	CORSOrigins string
}

// NewApp builds the API application: GraphQL, health and metrics endpoints
// behind request id, access log, recovery and CORS middleware.
func NewApp(opts Options) (*fiber.App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	schema, err := graph.NewSchema(graph.NewResolver(opts.Service, m, logger))
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "laptopd",
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          errorHandler(logger),
	})

	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(m.Middleware())
	app.Use(middleware.Recover(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	handlers.NewGraphQLHandler(schema, logger, opts.Debug).RegisterRoutes(app)
	handlers.NewHealthHandler(opts.Service, 2*time.Second, logger).RegisterRoutes(app)
	app.Get("/metrics", m.Handler())

	return app, nil
}

// Run serves app on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, app *fiber.App, addr string, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}
	logger.Info("server gracefully stopped")
	return nil
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(code).JSON(fiber.Map{"message": "internal server error"})
		}
		return c.Status(code).JSON(fiber.Map{"message": err.Error()})
	}
}
