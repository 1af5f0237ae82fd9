package speech

import (
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

	Synthesizer Synthesizer
}

// New provides the cached Sarvam synthesizer, or a nil Synthesizer when no
// speech credential is configured.
func New(p Params) Result {
	logger := p.Logger.With().Str("component", "speech").Logger()

	if !p.Config.SpeechEnabled() {
		logger.Info().Msg("speech synthesis disabled, SARVAM_API_KEY not set")
		return Result{}
	}

	voice := Voice{
		Speaker:    p.Config.Speaker,
		Pitch:      p.Config.Pitch,
		Pace:       p.Config.Pace,
		Loudness:   p.Config.Loudness,
		SampleRate: p.Config.SampleRate,
	}

	sarvam := NewSarvam(SarvamConfig{
		URL:      p.Config.SarvamURL,
		APIKey:   p.Config.SarvamAPIKey,
		Voice:    voice,
		MaxChars: p.Config.MaxSpeechChar,
	}, logger)

	return Result{
		Synthesizer: NewCached(sarvam, voice.String(), p.Config.AudioCache),
	}
}

func Module() fx.Option {
	return fx.Module(
		"speech",
		fx.Provide(New),
	)
}
