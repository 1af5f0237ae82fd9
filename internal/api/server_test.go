package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lbscek/sarvajna/internal/ai"
	"github.com/lbscek/sarvajna/internal/assistant"
	"github.com/lbscek/sarvajna/internal/config"
	"github.com/lbscek/sarvajna/internal/metrics"
	"github.com/lbscek/sarvajna/internal/prompt"
	"github.com/lbscek/sarvajna/internal/render"
	"github.com/lbscek/sarvajna/internal/store"
	"github.com/lbscek/sarvajna/internal/turns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type stubAsker struct {
	answer ai.Answer
	err    error
}

func (s stubAsker) Ask(ctx context.Context, p prompt.Prompt, timeout time.Duration) (ai.Answer, error) {
	return s.answer, s.err
}

type stubSynth struct{}

func (stubSynth) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	return []byte("RIFF"), nil
}

// stallingAsker blocks its first call until the turn is cancelled and
// answers every later call at once.
type stallingAsker struct {
	calls     atomic.Int32
	started   chan struct{}
	cancelled atomic.Bool
}

func newStallingAsker() *stallingAsker {
	return &stallingAsker{started: make(chan struct{})}
}

func (s *stallingAsker) Ask(ctx context.Context, p prompt.Prompt, timeout time.Duration) (ai.Answer, error) {
	if s.calls.Add(1) > 1 {
		return ai.Answer{Text: "Second answer."}, nil
	}
	close(s.started)
	select {
	case <-ctx.Done():
		s.cancelled.Store(true)
		return ai.Answer{}, &ai.RequestError{Kind: ai.NetworkError, Message: "request abandoned", Err: ctx.Err()}
	case <-time.After(5 * time.Second):
		return ai.Answer{Text: "First answer."}, nil
	}
}

func setupTestApp(t *testing.T, asker ai.Asker) *fiber.App {
	t.Helper()

	reg := prometheus.NewRegistry()
	a := assistant.NewAssistant(assistant.Deps{
		Composer: prompt.NewComposer(config.DefaultPrompts),
		Asker:    asker,
		Renderer: render.NewRenderer(stubSynth{}, "en-IN", zerolog.Nop()),
		Store:    store.NewMemory(0),
		Metrics:  metrics.New(reg),
		Logger:   zerolog.Nop(),
	}, assistant.Options{Timeout: time.Second})

	return NewApp(a, ServerOptions{Registry: reg}, zerolog.Nop())
}

func newTurnRequest(body TurnRequest) *http.Request {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/turns", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func postTurn(t *testing.T, app *fiber.App, body TurnRequest) (*http.Response, TurnResponse) {
	t.Helper()

	resp, err := app.Test(newTurnRequest(body), -1)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	var result TurnResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp, result
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t, stubAsker{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestAPI_TurnWithSpeech(t *testing.T) {
	app := setupTestApp(t, stubAsker{answer: ai.Answer{Text: "പ്രവേശനത്തിന് ഫോം സമർപ്പിക്കണം."}})

	resp, result := postTurn(t, app, TurnRequest{
		SessionID:  "web-1",
		Text:       "നമസ്കാരം, കോളേജിന്റെ പ്രവേശന നടപടി എന്താണ്?",
		WantSpeech: true,
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if result.Language != "ml" || result.Locale != "ml-IN" {
		t.Errorf("Expected ml / ml-IN, got %s / %s", result.Language, result.Locale)
	}
	audio, err := base64.StdEncoding.DecodeString(result.Audio)
	if err != nil || string(audio) != "RIFF" {
		t.Errorf("Expected base64 audio, got %q (%v)", result.Audio, err)
	}
	if result.TurnID == "" || result.SessionID != "web-1" {
		t.Errorf("Unexpected ids %+v", result)
	}
}

func TestAPI_TurnAssignsSession(t *testing.T) {
	app := setupTestApp(t, stubAsker{answer: ai.Answer{Text: "ok"}})

	_, result := postTurn(t, app, TurnRequest{Text: "college timing enth aanu"})
	if result.SessionID == "" {
		t.Fatal("Expected a generated session id")
	}
	if result.Audio != "" {
		t.Error("Expected no audio when speech not requested")
	}
}

func TestAPI_TurnFailureStatus(t *testing.T) {
	tests := []struct {
		name   string
		asker  stubAsker
		text   string
		status int
		kind   string
	}{
		{"unavailable", stubAsker{err: &ai.RequestError{Kind: ai.ServiceUnavailable}}, "Tell me about admissions", http.StatusBadGateway, "service_unavailable"},
		{"timeout", stubAsker{err: &ai.RequestError{Kind: ai.Timeout}}, "Tell me about admissions", http.StatusGatewayTimeout, "timeout"},
		{"empty", stubAsker{}, "  ", http.StatusBadRequest, "invalid_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t, tt.asker)
			resp, result := postTurn(t, app, TurnRequest{Text: tt.text, WantSpeech: true})

			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
			if result.ErrorKind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, result.ErrorKind)
			}
			if result.Text == "" || result.Audio != "" {
				t.Errorf("Expected localized text without audio, got %+v", result)
			}
		})
	}
}

func TestAPI_InvalidBody(t *testing.T) {
	app := setupTestApp(t, stubAsker{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/turns", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestAPI_HistoryFlow(t *testing.T) {
	app := setupTestApp(t, stubAsker{answer: ai.Answer{Text: "Library opens at 8."}})

	postTurn(t, app, TurnRequest{SessionID: "web-2", Text: "library timing?"})

	t.Run("Get", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/web-2/history", nil))
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		var result HistoryResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(result.Messages) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(result.Messages))
		}
		if result.Messages[1].Content != "Library opens at 8." {
			t.Errorf("Unexpected answer %q", result.Messages[1].Content)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/web-2/history", nil))
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", resp.StatusCode)
		}

		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/web-2/history", nil))
		var result HistoryResponse
		json.NewDecoder(resp.Body).Decode(&result)
		if len(result.Messages) != 0 {
			t.Errorf("Expected empty history, got %d", len(result.Messages))
		}
	})
}

func TestAPI_Metrics(t *testing.T) {
	app := setupTestApp(t, stubAsker{answer: ai.Answer{Text: "ok"}})
	postTurn(t, app, TurnRequest{Text: "Tell me about admissions"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `sarvajna_turns_total{language="en",outcome="ok"} 1`) {
		t.Errorf("Expected turn counter in metrics output, got:\n%s", body)
	}
}

func historyOf(t *testing.T, app *fiber.App, session string) []store.Message {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+session+"/history", nil))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	var result HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result.Messages
}

func TestAPI_NewerTurnSupersedesInFlightTurn(t *testing.T) {
	asker := newStallingAsker()
	app := setupTestApp(t, asker)

	first := make(chan int, 1)
	go func() {
		resp, err := app.Test(newTurnRequest(TurnRequest{SessionID: "web-3", Text: "hostel fees?"}), -1)
		if err != nil {
			first <- 0
			return
		}
		resp.Body.Close()
		first <- resp.StatusCode
	}()

	select {
	case <-asker.started:
	case <-time.After(2 * time.Second):
		t.Fatal("First turn never reached the model")
	}

	resp, result := postTurn(t, app, TurnRequest{SessionID: "web-3", Text: "library timing?"})
	if resp.StatusCode != http.StatusOK || result.Text != "Second answer." {
		t.Fatalf("Expected second turn to succeed, got %d %+v", resp.StatusCode, result)
	}

	select {
	case status := <-first:
		if status != http.StatusConflict {
			t.Errorf("Expected superseded turn to get 409, got %d", status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Superseded turn did not return")
	}

	if !asker.cancelled.Load() {
		t.Error("Expected the superseded model call to see cancellation")
	}

	messages := historyOf(t, app, "web-3")
	if len(messages) != 2 {
		t.Fatalf("Expected only the current turn recorded, got %d messages", len(messages))
	}
	if messages[0].Content != "library timing?" || messages[1].Content != "Second answer." {
		t.Errorf("Unexpected history %+v", messages)
	}
}

func TestAPI_CancelInFlightTurn(t *testing.T) {
	asker := newStallingAsker()
	tracker := turns.NewTracker()

	reg := prometheus.NewRegistry()
	a := assistant.NewAssistant(assistant.Deps{
		Composer: prompt.NewComposer(config.DefaultPrompts),
		Asker:    asker,
		Renderer: render.NewRenderer(stubSynth{}, "en-IN", zerolog.Nop()),
		Store:    store.NewMemory(0),
		Metrics:  metrics.New(reg),
		Logger:   zerolog.Nop(),
	}, assistant.Options{Timeout: 10 * time.Second})
	app := NewApp(a, ServerOptions{Turns: tracker}, zerolog.Nop())

	done := make(chan int, 1)
	go func() {
		resp, err := app.Test(newTurnRequest(TurnRequest{SessionID: "web-4", Text: "exam dates?"}), -1)
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()

	select {
	case <-asker.started:
	case <-time.After(2 * time.Second):
		t.Fatal("Turn never reached the model")
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/web-4/turn", nil))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.StatusCode)
	}

	select {
	case status := <-done:
		if status != http.StatusConflict {
			t.Errorf("Expected cancelled turn to get 409, got %d", status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Cancelled turn did not return")
	}

	if !asker.cancelled.Load() {
		t.Error("Expected the model call to see cancellation")
	}
	if tracker.Len() != 0 {
		t.Errorf("Expected no turns in flight, got %d", tracker.Len())
	}
	if messages := historyOf(t, app, "web-4"); len(messages) != 0 {
		t.Errorf("Expected cancelled turn not recorded, got %d messages", len(messages))
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/web-4/turn", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 with nothing in flight, got %d", resp.StatusCode)
	}
}
