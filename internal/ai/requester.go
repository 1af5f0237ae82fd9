package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lbscek/sarvajna/internal/prompt"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Answer is the model's reply for one turn.
type Answer struct {
	Text         string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Asker sends one composed prompt to the language model.
type Asker interface {
	Ask(ctx context.Context, p prompt.Prompt, timeout time.Duration) (Answer, error)
}

// Options tune the generation call.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// Requester implements Asker using the OpenAI-compatible API.
type Requester struct {
	client      llms.Model
	temperature float64
	maxTokens   int
	logger      zerolog.Logger
}

// NewRequester creates a new OpenAI-compatible requester.
func NewRequester(opts Options, logger zerolog.Logger) (*Requester, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	client, err := openai.New(
		openai.WithToken(opts.APIKey),
		openai.WithBaseURL(opts.BaseURL),
		openai.WithModel(opts.Model),
		openai.WithHTTPClient(&recordingDoer{next: httpClient}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return &Requester{
		client:      client,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		logger:      logger,
	}, nil
}

// Ask performs exactly one model call bounded by timeout. Cancelling ctx
// abandons the call. Failures are always *RequestError, except input
// validation which wraps prompt.ErrInvalidInput.
func (r *Requester) Ask(ctx context.Context, p prompt.Prompt, timeout time.Duration) (Answer, error) {
	if strings.TrimSpace(string(p)) == "" {
		return Answer{}, fmt.Errorf("%w: prompt is empty", prompt.ErrInvalidInput)
	}
	if timeout <= 0 {
		return Answer{}, fmt.Errorf("%w: timeout must be positive, got %s", prompt.ErrInvalidInput, timeout)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ex := &exchange{}
	ctx = context.WithValue(ctx, exchangeKey{}, ex)

	var callOpts []llms.CallOption
	if r.temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(r.temperature))
	}
	if r.maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(r.maxTokens))
	}

	started := time.Now()
	resp, err := r.client.GenerateContent(
		ctx,
		[]llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, string(p))},
		callOpts...,
	)
	r.logger.Debug().
		Dur("latency", time.Since(started)).
		Int("status", ex.status).
		Msg("model call finished")

	if err != nil {
		return Answer{}, classify(ctx, ex, err)
	}

	if len(resp.Choices) == 0 {
		return Answer{}, &RequestError{Kind: MalformedResponse, Status: ex.status, Message: "no choices returned from model"}
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return Answer{}, &RequestError{Kind: MalformedResponse, Status: ex.status, Message: "empty completion"}
	}

	answer := Answer{Text: text}

	// Extract token usage from GenerationInfo
	if genInfo := resp.Choices[0].GenerationInfo; genInfo != nil {
		answer.InputTokens = intValue(genInfo["PromptTokens"])
		answer.OutputTokens = intValue(genInfo["CompletionTokens"])
		answer.TotalTokens = intValue(genInfo["TotalTokens"])
	}

	return answer, nil
}

// classify maps a failed call to a RequestError. The deadline is checked
// first because a timed-out call also surfaces as a transport error.
func classify(ctx context.Context, ex *exchange, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &RequestError{Kind: Timeout, Message: "model did not answer in time", Err: err}
	case errors.Is(ctx.Err(), context.Canceled):
		return &RequestError{Kind: NetworkError, Message: "request cancelled", Err: context.Canceled}
	case ex.status == http.StatusUnauthorized || ex.status == http.StatusForbidden:
		return &RequestError{Kind: AuthenticationFailed, Status: ex.status, Message: "credential rejected", Err: err}
	case ex.status != 0 && (ex.status < 200 || ex.status >= 300):
		return &RequestError{Kind: ServiceUnavailable, Status: ex.status, Message: fmt.Sprintf("status %d", ex.status), Err: err}
	case ex.err != nil:
		return &RequestError{Kind: NetworkError, Message: "transport failure", Err: err}
	case ex.status != 0:
		return &RequestError{Kind: MalformedResponse, Status: ex.status, Message: "unparseable response", Err: err}
	default:
		return &RequestError{Kind: NetworkError, Message: "request failed", Err: err}
	}
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
