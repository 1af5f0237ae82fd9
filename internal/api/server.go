// Package api serves turns and session history over HTTP for the web client.
package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lbscek/sarvajna/internal/assistant"
	"github.com/lbscek/sarvajna/internal/turns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const appName = "sarvajna"

// ServerOptions configure the HTTP app.
type ServerOptions struct {
	CORSOrigins []string
	// Registry is served on /metrics when set.
	Registry *prometheus.Registry
	// Turns is shared with other transports. A private tracker is used when nil.
	Turns *turns.Tracker
}

// NewApp builds the fiber app with every route mounted.
func NewApp(a *assistant.Assistant, opts ServerOptions, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		ServerHeader:          appName,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
		BodyLimit:             64 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestLogger(log))

	origins := "*"
	if len(opts.CORSOrigins) > 0 {
		origins = strings.Join(opts.CORSOrigins, ",")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if opts.Registry != nil {
		metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
		app.Get("/metrics", func(c *fiber.Ctx) error {
			metrics(c.Context())
			return nil
		})
	}

	tracker := opts.Turns
	if tracker == nil {
		tracker = turns.NewTracker()
	}

	h := &handler{assistant: a, turns: tracker, log: log}
	v1 := app.Group("/api/v1")
	v1.Post("/turns", h.createTurn)
	v1.Delete("/sessions/:id/turn", h.cancelTurn)
	v1.Get("/sessions/:id/history", h.history)
	v1.Delete("/sessions/:id/history", h.clearHistory)

	return app
}

func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		if code == fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("internal server error")
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("http request")
		return err
	}
}
