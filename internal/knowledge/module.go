package knowledge

import (
	"errors"
	"io/fs"

	"github.com/lbscek/sarvajna/internal/config"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config *config.Config
	Logger zerolog.Logger
}

type Result struct {
	fx.Out

	FAQ *FAQ
}

// New loads the FAQ. A missing file is not fatal: answers then rely on the
// static knowledge text alone.
func New(p Params) (Result, error) {
	faq, err := LoadFAQ(p.Config.FAQFile)
	if errors.Is(err, fs.ErrNotExist) {
		p.Logger.Warn().Str("file", p.Config.FAQFile).Msg("knowledge base file not found")
		return Result{FAQ: faq}, nil
	}
	if err != nil {
		return Result{}, err
	}

	p.Logger.Info().Int("entries", faq.Len()).Msg("knowledge base loaded")
	return Result{FAQ: faq}, nil
}

func Module() fx.Option {
	return fx.Module(
		"knowledge",
		fx.Provide(New),
	)
}
