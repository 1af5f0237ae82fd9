package api

import (
	"encoding/base64"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lbscek/sarvajna/internal/ai"
	"github.com/lbscek/sarvajna/internal/assistant"
	"github.com/lbscek/sarvajna/internal/prompt"
	"github.com/lbscek/sarvajna/internal/render"
	"github.com/lbscek/sarvajna/internal/store"
	"github.com/lbscek/sarvajna/internal/turns"
	"github.com/rs/zerolog"
)

type handler struct {
	assistant *assistant.Assistant
	turns     *turns.Tracker
	log       zerolog.Logger
}

// TurnRequest is the body of POST /api/v1/turns.
type TurnRequest struct {
	SessionID  string `json:"session_id"`
	Text       string `json:"text"`
	FromSpeech bool   `json:"from_speech"`
	WantSpeech bool   `json:"want_speech"`
}

// TurnResponse is the rendered turn. Audio is only set when speech was
// requested and synthesized.
type TurnResponse struct {
	TurnID    string `json:"turn_id"`
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
	Text      string `json:"text"`
	Locale    string `json:"locale"`
	Audio     string `json:"audio,omitempty"` // Base64
	ErrorKind string `json:"error_kind,omitempty"`
}

// HistoryResponse lists a session's messages, oldest first.
type HistoryResponse struct {
	SessionID string          `json:"session_id"`
	Messages  []store.Message `json:"messages"`
}

func (h *handler) createTurn(c *fiber.Ctx) error {
	var req TurnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	// The request context ends on server shutdown. A newer turn for the
	// session or DELETE /sessions/:id/turn cancels this one earlier.
	ctx, id := h.turns.Begin(c.Context(), req.SessionID)
	defer h.turns.Finish(req.SessionID, id)

	turn := h.assistant.Handle(ctx, assistant.Request{
		SessionID:  req.SessionID,
		Utterance:  prompt.Utterance{Text: req.Text, FromSpeech: req.FromSpeech},
		WantSpeech: req.WantSpeech,
	})

	if !h.turns.Current(req.SessionID, id) {
		h.log.Info().Str("session_id", req.SessionID).Str("turn_id", turn.ID).Msg("turn superseded, reply dropped")
		return fiber.NewError(fiber.StatusConflict, "turn cancelled or superseded")
	}

	resp := TurnResponse{
		TurnID:    turn.ID,
		SessionID: turn.SessionID,
		Language:  turn.Language.Code(),
		Text:      turn.Response.Text,
		Locale:    turn.Response.Locale,
		ErrorKind: turn.Response.ErrorKind,
	}
	if turn.Response.Audio != nil {
		resp.Audio = base64.StdEncoding.EncodeToString(turn.Response.Audio)
	}

	return c.Status(statusFor(resp.ErrorKind)).JSON(resp)
}

// cancelTurn abandons the session's in-flight turn, for clients that
// navigate away.
func (h *handler) cancelTurn(c *fiber.Ctx) error {
	if !h.turns.Cancel(c.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, "no turn in flight")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) history(c *fiber.Ctx) error {
	id := c.Params("id")
	messages, err := h.assistant.History(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(HistoryResponse{SessionID: id, Messages: messages})
}

func (h *handler) clearHistory(c *fiber.Ctx) error {
	if err := h.assistant.Clear(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// statusFor maps a rendered failure to an HTTP status. The body still carries
// the localized message.
func statusFor(kind string) int {
	switch kind {
	case "":
		return fiber.StatusOK
	case render.KindInvalidInput:
		return fiber.StatusBadRequest
	case ai.Timeout.String():
		return fiber.StatusGatewayTimeout
	case render.KindInternal:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadGateway
	}
}
