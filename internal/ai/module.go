package ai

import (
	"github.com/lbscek/sarvajna/internal/config"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Params for creating an Asker
type Params struct {
	fx.In

	Config *config.Config
	Logger zerolog.Logger
}

// Result of creating an Asker
type Result struct {
	fx.Out

	Asker Asker
}

// New creates a new Asker based on configuration
func New(p Params) (Result, error) {
	requester, err := NewRequester(Options{
		APIKey:      p.Config.APIKey,
		BaseURL:     p.Config.BaseURL,
		Model:       p.Config.Model,
		Temperature: p.Config.Temperature,
		MaxTokens:   p.Config.MaxTokens,
	}, p.Logger.With().Str("component", "ai").Logger())
	if err != nil {
		return Result{}, err
	}

	return Result{
		Asker: requester,
	}, nil
}

// Module provides the model requester
func Module() fx.Option {
	return fx.Module(
		"ai",
		fx.Provide(
			New,
		),
	)
}
