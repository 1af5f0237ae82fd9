package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/lbscek/sarvajna/internal/assistant"
	"github.com/lbscek/sarvajna/internal/config"
	"github.com/lbscek/sarvajna/internal/prompt"
	"github.com/lbscek/sarvajna/internal/store"
	"github.com/lbscek/sarvajna/internal/turns"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const welcomeText = "നമസ്കാരം! I am സർവജ്ഞ, the LBS College of Engineering assistant. " +
	"Ask me anything about the college in Malayalam, English or Manglish.\n\n" +
	"/history shows our recent conversation, /clear starts fresh."

// historyPreview is how many recent messages /history prints.
const historyPreview = 10

type Params struct {
	fx.In

	Config    *config.Config
	Assistant *assistant.Assistant
	Turns     *turns.Tracker
	Logger    zerolog.Logger
}

type Result struct {
	fx.Out

	Bot *tbot.Bot
}

type handler struct {
	assistant *assistant.Assistant
	turns     *turns.Tracker
	speech    bool
	log       zerolog.Logger
}

// New creates the Telegram bot. Without TELEGRAM_API_TOKEN it provides nil
// and nothing is started.
func New(lc fx.Lifecycle, p Params) (Result, error) {
	log := p.Logger.With().Str("component", "bot").Logger()

	if p.Config.Token == "" {
		log.Info().Msg("TELEGRAM_API_TOKEN not set, telegram bot disabled")
		return Result{}, nil
	}

	h := &handler{
		assistant: p.Assistant,
		turns:     p.Turns,
		speech:    p.Config.SpeechReplies && p.Config.SpeechEnabled(),
		log:       log,
	}

	opts := []tbot.Option{
		tbot.WithDefaultHandler(h.handleMessage),
	}

	tg, err := tbot.New(p.Config.Token, opts...)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(
		fx.Hook{
			OnStart: func(context.Context) error {
				log.Info().Bool("speech", h.speech).Msg("starting telegram bot...")
				go tg.Start(ctx)
				return nil
			},
			OnStop: func(context.Context) error {
				log.Info().Msg("stopping telegram bot...")
				cancel()
				return nil
			},
		},
	)

	return Result{Bot: tg}, nil
}

func Module() fx.Option {
	return fx.Module(
		"bot",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(bot *tbot.Bot) {},
		),
	)
}

func sessionID(chatID int64) string {
	return fmt.Sprintf("telegram:%d", chatID)
}

func (h *handler) handleMessage(ctx context.Context, tg *tbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	session := sessionID(chatID)

	switch command(text) {
	case "/start":
		h.send(ctx, tg, chatID, welcomeText)
		return
	case "/clear":
		h.turns.Cancel(session)
		if err := h.assistant.Clear(ctx, session); err != nil {
			h.log.Error().Err(err).Int64("chat_id", chatID).Msg("unable to clear history")
		}
		h.send(ctx, tg, chatID, "Conversation cleared. Starting fresh!")
		h.log.Info().Int64("chat_id", chatID).Msg("history cleared by user")
		return
	case "/history":
		messages, err := h.assistant.History(ctx, session)
		if err != nil {
			h.log.Error().Err(err).Int64("chat_id", chatID).Msg("unable to load history")
			h.send(ctx, tg, chatID, "Sorry, I could not load the history right now.")
			return
		}
		h.send(ctx, tg, chatID, formatHistory(messages, historyPreview))
		return
	}

	turnCtx, id := h.turns.Begin(ctx, session)
	defer h.turns.Finish(session, id)

	tg.SendChatAction(turnCtx, &tbot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})

	turn := h.assistant.Handle(turnCtx, assistant.Request{
		SessionID:  session,
		Utterance:  prompt.Utterance{Text: text},
		WantSpeech: h.speech,
	})

	if !h.turns.Current(session, id) {
		h.log.Info().Int64("chat_id", chatID).Str("turn_id", turn.ID).Msg("turn superseded, reply dropped")
		return
	}

	h.send(turnCtx, tg, chatID, turn.Response.Text)

	if turn.Response.Audio != nil {
		_, err := tg.SendAudio(turnCtx, &tbot.SendAudioParams{
			ChatID: chatID,
			Audio: &models.InputFileUpload{
				Filename: "answer.wav",
				Data:     bytes.NewReader(turn.Response.Audio),
			},
		})
		if err != nil {
			h.log.Error().Err(err).Int64("chat_id", chatID).Str("turn_id", turn.ID).Msg("unable to send audio")
		}
	}
}

func (h *handler) send(ctx context.Context, tg *tbot.Bot, chatID int64, text string) {
	_, err := tg.SendMessage(ctx, &tbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("unable to send message")
	}
}

// command returns the bot command in text, without any @botname suffix.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

func formatHistory(messages []store.Message, limit int) string {
	if len(messages) == 0 {
		return "No conversation yet."
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		who := "You"
		if m.Role == store.RoleAssistant {
			who = "Sarvajna"
		}
		fmt.Fprintf(&b, "%s (%s): %s", who, m.Timestamp.Format("02 Jan 15:04"), m.Content)
	}
	return b.String()
}
