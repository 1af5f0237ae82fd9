package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const sarvamModel = "bulbul:v2"

// errAbandoned marks calls the caller cancelled or timed out. They say
// nothing about the vendor's health and never count against the breaker.
var errAbandoned = errors.New("caller abandoned synthesis")

// Voice holds the Sarvam voice settings.
type Voice struct {
	Speaker    string
	Pitch      float64
	Pace       float64
	Loudness   float64
	SampleRate int
}

func (v Voice) String() string {
	return fmt.Sprintf("%s/%.2f/%.2f/%.2f/%d", v.Speaker, v.Pitch, v.Pace, v.Loudness, v.SampleRate)
}

// SarvamConfig configures the Sarvam text-to-speech client.
type SarvamConfig struct {
	URL      string
	APIKey   string
	Voice    Voice
	MaxChars int
	Timeout  time.Duration
}

// Sarvam calls the Sarvam AI text-to-speech API. Repeated failures open a
// circuit breaker so later turns skip synthesis quickly.
type Sarvam struct {
	url        string
	apiKey     string
	voice      Voice
	maxChars   int
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger
}

type sarvamRequest struct {
	Text                string  `json:"text"`
	TargetLanguageCode  string  `json:"target_language_code"`
	Speaker             string  `json:"speaker,omitempty"`
	Pitch               float64 `json:"pitch"`
	Pace                float64 `json:"pace"`
	Loudness            float64 `json:"loudness"`
	SpeechSampleRate    int     `json:"speech_sample_rate,omitempty"`
	EnablePreprocessing bool    `json:"enable_preprocessing"`
	Model               string  `json:"model"`
}

type sarvamResponse struct {
	RequestID string   `json:"request_id"`
	Audios    []string `json:"audios"`
}

func NewSarvam(cfg SarvamConfig, logger zerolog.Logger) *Sarvam {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	s := &Sarvam{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		voice:      cfg.Voice,
		maxChars:   cfg.MaxChars,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}

	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sarvam-tts",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errAbandoned)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("speech breaker state changed")
		},
	})

	return s
}

// Synthesize returns decoded audio bytes for text.
func (s *Sarvam) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &SynthesisError{Locale: locale, Reason: "empty text"}
	}
	if s.maxChars > 0 && len([]rune(text)) > s.maxChars {
		return nil, &SynthesisError{Locale: locale, Reason: fmt.Sprintf("text longer than %d characters", s.maxChars)}
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.call(ctx, text, locale)
	})
	if err != nil {
		var synthErr *SynthesisError
		if errors.As(err, &synthErr) {
			return nil, err
		}
		return nil, &SynthesisError{Locale: locale, Reason: "breaker rejected request", Err: err}
	}

	return out.([]byte), nil
}

func (s *Sarvam) call(ctx context.Context, text, locale string) ([]byte, error) {
	payload := sarvamRequest{
		Text:                text,
		TargetLanguageCode:  locale,
		Speaker:             s.voice.Speaker,
		Pitch:               s.voice.Pitch,
		Pace:                s.voice.Pace,
		Loudness:            s.voice.Loudness,
		SpeechSampleRate:    s.voice.SampleRate,
		EnablePreprocessing: true,
		Model:               sarvamModel,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &SynthesisError{Locale: locale, Reason: "failed to marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, &SynthesisError{Locale: locale, Reason: "failed to create request", Err: err}
	}

	req.Header.Set("api-subscription-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &SynthesisError{Locale: locale, Reason: "request abandoned", Err: fmt.Errorf("%w: %w", errAbandoned, ctx.Err())}
		}
		return nil, &SynthesisError{Locale: locale, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &SynthesisError{Locale: locale, Reason: "response abandoned", Err: fmt.Errorf("%w: %w", errAbandoned, ctx.Err())}
		}
		return nil, &SynthesisError{Locale: locale, Reason: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SynthesisError{Locale: locale, Reason: fmt.Sprintf("status %d: %s", resp.StatusCode, string(respBody))}
	}

	var parsed sarvamResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &SynthesisError{Locale: locale, Reason: "failed to parse response", Err: err}
	}

	if len(parsed.Audios) == 0 || parsed.Audios[0] == "" {
		return nil, &SynthesisError{Locale: locale, Reason: "response carried no audio"}
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.Audios[0])
	if err != nil {
		return nil, &SynthesisError{Locale: locale, Reason: "failed to decode audio", Err: err}
	}

	s.logger.Debug().
		Str("request_id", parsed.RequestID).
		Str("locale", locale).
		Int("bytes", len(audio)).
		Msg("speech synthesized")

	return audio, nil
}
