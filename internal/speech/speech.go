// Package speech turns answer text into playable audio.
package speech

import (
	"context"
	"fmt"

	"github.com/lbscek/sarvajna/internal/language"
)

const (
	LocaleMalayalam = "ml-IN"
	LocaleEnglish   = "en-IN"
)

// Synthesizer produces audio for text spoken in locale.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, locale string) ([]byte, error)
}

// SynthesisError is returned for any failed synthesis. Callers treat it as
// non-fatal and fall back to text.
type SynthesisError struct {
	Locale string
	Reason string
	Err    error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech synthesis (%s): %s: %v", e.Locale, e.Reason, e.Err)
	}
	return fmt.Sprintf("speech synthesis (%s): %s", e.Locale, e.Reason)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// LocaleFor maps a detected language to a voice locale. Unknown falls back
// to defaultLocale.
func LocaleFor(lang language.Language, defaultLocale string) string {
	switch lang {
	case language.Malayalam, language.Manglish:
		return LocaleMalayalam
	case language.English:
		return LocaleEnglish
	default:
		return defaultLocale
	}
}
