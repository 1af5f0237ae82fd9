package api

import (
	"context"
	"errors"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/lbscek/sarvajna/internal/assistant"
	"github.com/lbscek/sarvajna/internal/config"
	"github.com/lbscek/sarvajna/internal/turns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config    *config.Config
	Assistant *assistant.Assistant
	Registry  *prometheus.Registry `optional:"true"`
	Turns     *turns.Tracker
	Logger    zerolog.Logger
}

type Result struct {
	fx.Out

	App *fiber.App
}

func New(lc fx.Lifecycle, p Params) Result {
	log := p.Logger.With().Str("component", "api").Logger()

	app := NewApp(p.Assistant, ServerOptions{
		CORSOrigins: p.Config.CORSOrigins,
		Registry:    p.Registry,
		Turns:       p.Turns,
	}, log)

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				ln, err := net.Listen("tcp", p.Config.HTTPAddr)
				if err != nil {
					return err
				}
				log.Info().Str("addr", p.Config.HTTPAddr).Msg("starting http server...")
				go func() {
					if err := app.Listener(ln); err != nil && !errors.Is(err, net.ErrClosed) {
						log.Error().Err(err).Msg("http server stopped")
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.Info().Msg("stopping http server...")
				return app.ShutdownWithContext(ctx)
			},
		},
	)

	return Result{App: app}
}

func Module() fx.Option {
	return fx.Module(
		"api",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(app *fiber.App) {},
		),
	)
}
