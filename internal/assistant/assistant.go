// Package assistant runs one turn through detection, composition, the model
// request and rendering.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lbscek/sarvajna/internal/ai"
	"github.com/lbscek/sarvajna/internal/knowledge"
	"github.com/lbscek/sarvajna/internal/language"
	"github.com/lbscek/sarvajna/internal/metrics"
	"github.com/lbscek/sarvajna/internal/prompt"
	"github.com/lbscek/sarvajna/internal/render"
	"github.com/lbscek/sarvajna/internal/store"
	"github.com/rs/zerolog"
)

// Request is the per-turn input from a transport.
type Request struct {
	SessionID  string
	Utterance  prompt.Utterance
	WantSpeech bool
}

// Turn is the outcome of one request. Response is always usable; Err is set
// when the turn failed and Response carries the localized error message.
type Turn struct {
	ID        string
	SessionID string
	Language  language.Language
	Response  render.Response
	Err       error
	Latency   time.Duration
}

// Options holds the read-only settings shared by every turn.
type Options struct {
	Timeout time.Duration
	// Knowledge is the static college text prepended to FAQ facts.
	Knowledge string
	// Enabled lists the languages answered natively. Others get English.
	Enabled []language.Language
	// HistoryLimit bounds History results. Zero returns everything.
	HistoryLimit int
}

type Assistant struct {
	composer *prompt.Composer
	asker    ai.Asker
	renderer *render.Renderer
	faq      *knowledge.FAQ
	store    store.Store
	metrics  *metrics.Metrics
	opts     Options
	enabled  map[language.Language]bool
	logger   zerolog.Logger
}

// Deps are the collaborators of an Assistant. FAQ, Store and Metrics may be nil.
type Deps struct {
	Composer *prompt.Composer
	Asker    ai.Asker
	Renderer *render.Renderer
	FAQ      *knowledge.FAQ
	Store    store.Store
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

func NewAssistant(d Deps, opts Options) *Assistant {
	enabled := make(map[language.Language]bool, len(opts.Enabled))
	for _, l := range opts.Enabled {
		enabled[l] = true
	}

	return &Assistant{
		composer: d.Composer,
		asker:    d.Asker,
		renderer: d.Renderer,
		faq:      d.FAQ,
		store:    d.Store,
		metrics:  d.Metrics,
		opts:     opts,
		enabled:  enabled,
		logger:   d.Logger,
	}
}

// Handle runs a full turn. It never returns an error: failures are rendered
// into the response and reported in Turn.Err.
func (a *Assistant) Handle(ctx context.Context, req Request) Turn {
	start := time.Now()
	turn := Turn{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
	}
	log := a.logger.With().Str("turn_id", turn.ID).Str("session_id", req.SessionID).Logger()

	text := prompt.Sanitize(req.Utterance.Text)
	turn.Language = language.Detect(text)
	lang := a.answerLanguage(turn.Language)

	log.Info().
		Str("language", turn.Language.Code()).
		Str("answer_language", lang.Code()).
		Bool("from_speech", req.Utterance.FromSpeech).
		Msg("turn started")

	p, err := a.composer.Compose(prompt.Utterance{Text: text, FromSpeech: req.Utterance.FromSpeech}, lang, a.knowledgeFor(text))
	if err == nil {
		var answer ai.Answer
		askStart := time.Now()
		answer, err = a.asker.Ask(ctx, p, a.opts.Timeout)
		if a.metrics != nil {
			a.metrics.ModelRequest(outcome(err), time.Since(askStart))
		}
		if err == nil {
			turn.Response = a.renderer.Render(ctx, answer, lang, req.WantSpeech)
			log.Debug().Int("total_tokens", answer.TotalTokens).Msg("answer received")
		}
	}

	if err != nil {
		turn.Err = err
		turn.Response = a.renderer.RenderError(err, lang)
		log.Warn().Err(err).Str("error_kind", turn.Response.ErrorKind).Msg("turn failed")
	}

	turn.Latency = time.Since(start)
	if a.metrics != nil {
		a.metrics.Turn(turn.Language.Code(), outcome(err))
		if turn.Response.SpeechFailed {
			a.metrics.SynthesisFailed()
		}
	}

	log.Info().
		Dur("latency", turn.Latency).
		Bool("audio", turn.Response.Audio != nil).
		Msg("turn finished")

	// A cancelled turn was superseded or abandoned by its caller.
	if ctx.Err() == nil {
		a.record(ctx, turn, text)
	}
	return turn
}

// History returns the recorded messages of a session.
func (a *Assistant) History(ctx context.Context, sessionID string) ([]store.Message, error) {
	if a.store == nil {
		return []store.Message{}, nil
	}
	return a.store.History(ctx, sessionID, a.opts.HistoryLimit)
}

// Clear forgets a session's history.
func (a *Assistant) Clear(ctx context.Context, sessionID string) error {
	if a.store == nil {
		return nil
	}
	return a.store.Clear(ctx, sessionID)
}

// answerLanguage keeps the detected language when it is enabled and falls
// back to English otherwise. Unknown is kept so the locale uses the default.
func (a *Assistant) answerLanguage(detected language.Language) language.Language {
	if detected == language.Unknown || len(a.enabled) == 0 || a.enabled[detected] {
		return detected
	}
	return language.English
}

func (a *Assistant) knowledgeFor(text string) string {
	parts := make([]string, 0, 2)
	if kb := strings.TrimSpace(a.opts.Knowledge); kb != "" {
		parts = append(parts, kb)
	}
	if entry, ok := a.lookupFAQ(text); ok {
		parts = append(parts, entry.Facts())
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// lookupFAQ tries the text as typed, then romanized when it is in Malayalam
// script, since FAQ patterns and tags are written in Latin letters.
func (a *Assistant) lookupFAQ(text string) (knowledge.Entry, bool) {
	if a.faq == nil {
		return knowledge.Entry{}, false
	}
	if entry, ok := a.faq.Lookup(text); ok {
		return entry, true
	}
	if romanized := language.Transliterate(text); romanized != text {
		return a.faq.Lookup(romanized)
	}
	return knowledge.Entry{}, false
}

func (a *Assistant) record(ctx context.Context, turn Turn, question string) {
	if a.store == nil || turn.SessionID == "" {
		return
	}

	now := time.Now()
	err := a.store.Record(ctx, turn.SessionID,
		store.Message{Role: store.RoleUser, Content: question, Language: turn.Language.Code(), Timestamp: now.Add(-turn.Latency)},
		store.Message{Role: store.RoleAssistant, Content: turn.Response.Text, Language: turn.Language.Code(), Timestamp: now},
	)
	if err != nil {
		a.logger.Error().Err(err).Str("turn_id", turn.ID).Msg("unable to record turn")
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return render.ErrorKind(err)
}
