// Package render turns a model answer or failure into the text and optional
// audio returned to the caller.
package render

import (
	"context"

	"github.com/lbscek/sarvajna/internal/ai"
	"github.com/lbscek/sarvajna/internal/language"
	"github.com/lbscek/sarvajna/internal/speech"
	"github.com/rs/zerolog"
)

// Response is what the caller shows and plays. Locale is always set so a
// client can synthesize later even when Audio is nil.
type Response struct {
	Text   string
	Audio  []byte
	Locale string
	// ErrorKind is empty for answered turns.
	ErrorKind string
	// SpeechFailed is set when speech was wanted but synthesis degraded to text.
	SpeechFailed bool
}

// Renderer builds the localized Response for answered and failed turns.
type Renderer struct {
	synth         speech.Synthesizer
	defaultLocale string
	logger        zerolog.Logger
}

// NewRenderer creates a renderer. synth may be nil, in which case responses
// are always text-only.
func NewRenderer(synth speech.Synthesizer, defaultLocale string, logger zerolog.Logger) *Renderer {
	return &Renderer{
		synth:         synth,
		defaultLocale: defaultLocale,
		logger:        logger,
	}
}

// Render builds the response for a successful answer. Synthesis failures are
// logged and never fail the turn.
func (r *Renderer) Render(ctx context.Context, answer ai.Answer, lang language.Language, wantSpeech bool) Response {
	resp := Response{
		Text:   answer.Text,
		Locale: speech.LocaleFor(lang, r.defaultLocale),
	}

	if !wantSpeech {
		return resp
	}
	if r.synth == nil {
		r.logger.Debug().Msg("speech wanted but no synthesizer configured")
		return resp
	}

	audio, err := r.synth.Synthesize(ctx, answer.Text, resp.Locale)
	if err != nil {
		r.logger.Warn().Err(err).Str("locale", resp.Locale).Msg("speech synthesis failed, replying with text only")
		resp.SpeechFailed = true
		return resp
	}

	resp.Audio = audio
	return resp
}

// RenderError builds the localized, audio-free response for a failed turn.
func (r *Renderer) RenderError(err error, lang language.Language) Response {
	kind := ErrorKind(err)
	return Response{
		Text:      Message(kind, lang),
		Locale:    speech.LocaleFor(lang, r.defaultLocale),
		ErrorKind: kind,
	}
}
