// Package prompt builds the single prompt sent to the language model for a turn.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lbscek/sarvajna/internal/config"
	"github.com/lbscek/sarvajna/internal/language"
)

// MaxUtteranceRunes bounds the user text forwarded to the model.
const MaxUtteranceRunes = 1000

// ErrInvalidInput is returned for input rejected before any network call.
var ErrInvalidInput = errors.New("invalid input")

// Utterance is the user's text for one turn.
type Utterance struct {
	Text string
	// FromSpeech is set when Text came from speech recognition.
	FromSpeech bool
}

// Prompt is the composed model input.
type Prompt string

// Composer joins the instruction template, knowledge, language directive and
// question in a fixed order.
type Composer struct {
	prompts config.Prompts
}

func NewComposer(prompts config.Prompts) *Composer {
	return &Composer{prompts: prompts}
}

// Compose builds the prompt for u. It fails with ErrInvalidInput when the
// trimmed utterance is empty. knowledgeBase may be empty.
func (c *Composer) Compose(u Utterance, lang language.Language, knowledgeBase string) (Prompt, error) {
	text := strings.TrimSpace(u.Text)
	if text == "" {
		return "", fmt.Errorf("%w: utterance is empty", ErrInvalidInput)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(c.prompts.Instruction))

	if kb := strings.TrimSpace(knowledgeBase); kb != "" {
		b.WriteString("\n\n## College Knowledge\n\n")
		b.WriteString(kb)
	}

	b.WriteString("\n\n## Language\n\n")
	b.WriteString(strings.TrimSpace(c.directive(lang)))

	b.WriteString("\n\n## Question\n\n")
	if u.FromSpeech {
		b.WriteString("(Transcribed from speech, may contain recognition errors.)\n")
	}
	b.WriteString(text)

	return Prompt(b.String()), nil
}

func (c *Composer) directive(lang language.Language) string {
	switch lang {
	case language.Malayalam:
		return c.prompts.Malayalam
	case language.Manglish:
		return c.prompts.Manglish
	default:
		return c.prompts.English
	}
}

// Sanitize collapses runs of whitespace and truncates overly long input.
func Sanitize(text string) string {
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > MaxUtteranceRunes {
		text = string(runes[:MaxUtteranceRunes]) + "..."
	}
	return text
}
