package store

import (
	"context"

	"github.com/lbscek/sarvajna/internal/config"
	"github.com/lbscek/sarvajna/internal/db"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config   *config.Config
	Logger   zerolog.Logger
	DBClient *db.Client `optional:"true"`
}

type Result struct {
	fx.Out

	Store Store
}

// New picks Postgres when a database client exists, otherwise memory.
func New(lc fx.Lifecycle, p Params) Result {
	if p.DBClient == nil {
		return Result{Store: NewMemory(p.Config.HistoryLimit)}
	}

	pg := NewPostgres(p.DBClient.Pool)
	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				p.Logger.Info().Msg("ensuring history schema")
				return pg.Migrate(ctx)
			},
		},
	)

	return Result{Store: pg}
}

func Module() fx.Option {
	return fx.Module(
		"store",
		fx.Provide(New),
	)
}
