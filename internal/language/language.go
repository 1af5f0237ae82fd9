// Package language classifies user text as Malayalam, Manglish or English.
package language

import (
	"fmt"
	"strings"
	"unicode"
)

// Language is the language an utterance was written in.
type Language int

const (
	Unknown Language = iota
	Malayalam
	English
	Manglish
)

func (l Language) String() string {
	switch l {
	case Malayalam:
		return "Malayalam"
	case English:
		return "English"
	case Manglish:
		return "Manglish"
	default:
		return "Unknown"
	}
}

// Code returns the short configuration code for the language.
func (l Language) Code() string {
	switch l {
	case Malayalam:
		return "ml"
	case English:
		return "en"
	case Manglish:
		return "manglish"
	default:
		return "unknown"
	}
}

// Parse maps a configuration code back to a Language.
func Parse(code string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "ml", "malayalam", "ml_script":
		return Malayalam, nil
	case "en", "english":
		return English, nil
	case "manglish":
		return Manglish, nil
	}
	return Unknown, fmt.Errorf("unknown language code %q", code)
}

// Malayalam script block.
const (
	scriptStart = '\u0D00'
	scriptEnd   = '\u0D7F'
)

// manglishTokens are common romanized Malayalam words. Matching is on whole
// lower-cased words only, so short English words are not listed.
var manglishTokens = map[string]struct{}{
	"enthu": {}, "enth": {}, "entha": {}, "enthanu": {}, "enthaanu": {}, "aanu": {}, "anu": {},
	"alle": {}, "ille": {}, "illa": {}, "undu": {}, "und": {}, "evide": {},
	"evideya": {}, "eppol": {}, "eppo": {}, "eppozha": {}, "engane": {}, "enganeya": {},
	"ethra": {}, "ethu": {}, "aaru": {}, "aara": {}, "njan": {}, "njaan": {}, "ningal": {},
	"ninte": {}, "ente": {}, "avan": {}, "aval": {}, "nammal": {}, "namukku": {}, "enikku": {},
	"enik": {}, "venam": {}, "vendi": {}, "kittum": {}, "kitto": {}, "cheyyanam": {},
	"cheyyam": {}, "parayu": {}, "paranju": {}, "ariyamo": {}, "ariyilla": {}, "sheri": {},
	"shari": {}, "nalla": {}, "kollam": {}, "pinne": {}, "athu": {}, "ithu": {}, "onnu": {},
	"randu": {}, "kure": {}, "vallatum": {}, "chetta": {}, "chechi": {}, "machane": {},
	"mone": {}, "namaskaram": {}, "nanni": {}, "samayam": {}, "pravesanam": {},
	"kazhiyumo": {}, "padikkan": {}, "collegil": {}, "collegeil": {},
}

// Detect classifies text. Malayalam script anywhere in the text wins over
// romanized tokens; empty text is Unknown.
func Detect(text string) Language {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unknown
	}

	if hasScript(text) {
		return Malayalam
	}

	if hasManglishToken(text) {
		return Manglish
	}

	return English
}

func hasScript(text string) bool {
	for _, r := range text {
		if inScript(r) {
			return true
		}
	}
	return false
}

func inScript(r rune) bool {
	return r >= scriptStart && r <= scriptEnd
}

func hasManglishToken(text string) bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, ok := manglishTokens[w]; ok {
			return true
		}
	}
	return false
}
