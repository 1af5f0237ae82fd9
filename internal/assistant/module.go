package assistant

import (
	"fmt"

	"github.com/lbscek/sarvajna/internal/ai"
	"github.com/lbscek/sarvajna/internal/config"
	"github.com/lbscek/sarvajna/internal/knowledge"
	"github.com/lbscek/sarvajna/internal/language"
	"github.com/lbscek/sarvajna/internal/metrics"
	"github.com/lbscek/sarvajna/internal/prompt"
	"github.com/lbscek/sarvajna/internal/render"
	"github.com/lbscek/sarvajna/internal/speech"
	"github.com/lbscek/sarvajna/internal/store"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config      *config.Config
	Logger      zerolog.Logger
	Asker       ai.Asker
	Synthesizer speech.Synthesizer `optional:"true"`
	FAQ         *knowledge.FAQ     `optional:"true"`
	Store       store.Store        `optional:"true"`
	Metrics     *metrics.Metrics   `optional:"true"`
}

type Result struct {
	fx.Out

	Assistant *Assistant
}

func New(p Params) (Result, error) {
	enabled := make([]language.Language, 0, len(p.Config.EnabledLanguages))
	for _, code := range p.Config.EnabledLanguages {
		lang, err := language.Parse(code)
		if err != nil {
			return Result{}, fmt.Errorf("ENABLED_LANGUAGES: %w", err)
		}
		enabled = append(enabled, lang)
	}

	logger := p.Logger.With().Str("component", "assistant").Logger()

	a := NewAssistant(Deps{
		Composer: prompt.NewComposer(p.Config.Prompts),
		Asker:    p.Asker,
		Renderer: render.NewRenderer(p.Synthesizer, p.Config.DefaultLocale, logger),
		FAQ:      p.FAQ,
		Store:    p.Store,
		Metrics:  p.Metrics,
		Logger:   logger,
	}, Options{
		Timeout:      p.Config.Timeout,
		Knowledge:    p.Config.Knowledge,
		Enabled:      enabled,
		HistoryLimit: p.Config.HistoryLimit,
	})

	return Result{Assistant: a}, nil
}

func Module() fx.Option {
	return fx.Module(
		"assistant",
		fx.Provide(New),
	)
}
