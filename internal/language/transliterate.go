package language

import "strings"

const (
	virama   = '\u0D4D'
	anusvara = '\u0D02'
	visarga  = '\u0D03'
	consRa   = '\u0D31'
	zwj      = '\u200D'
	zwnj     = '\u200C'
)

var vowels = map[rune]string{
	'അ': "a", 'ആ': "aa", 'ഇ': "i", 'ഈ': "ee", 'ഉ': "u", 'ഊ': "oo", 'ഋ': "ru",
	'എ': "e", 'ഏ': "e", 'ഐ': "ai", 'ഒ': "o", 'ഓ': "o", 'ഔ': "au",
}

var vowelSigns = map[rune]string{
	'ാ': "aa", 'ി': "i", 'ീ': "ee", 'ു': "u", 'ൂ': "oo", 'ൃ': "ru",
	'െ': "e", 'േ': "e", 'ൈ': "ai", 'ൊ': "o", 'ോ': "o", 'ൌ': "au", 'ൗ': "au",
}

var consonants = map[rune]string{
	'ക': "k", 'ഖ': "kh", 'ഗ': "g", 'ഘ': "gh", 'ങ': "ng",
	'ച': "ch", 'ഛ': "chh", 'ജ': "j", 'ഝ': "jh", 'ഞ': "nj",
	'ട': "t", 'ഠ': "th", 'ഡ': "d", 'ഢ': "dh", 'ണ': "n",
	'ത': "th", 'ഥ': "th", 'ദ': "d", 'ധ': "dh", 'ന': "n",
	'പ': "p", 'ഫ': "f", 'ബ': "b", 'ഭ': "bh", 'മ': "m",
	'യ': "y", 'ര': "r", 'ല': "l", 'വ': "v", 'ശ': "sh",
	'ഷ': "sh", 'സ': "s", 'ഹ': "h", 'ള': "l", 'ഴ': "zh", 'റ': "r",
}

var chillus = map[rune]string{
	'ൺ': "n", 'ൻ': "n", 'ർ': "r", 'ൽ': "l", 'ൾ': "l", 'ൿ': "k",
}

// Transliterate romanizes Malayalam script the way students type Manglish,
// so "ഹോസ്റ്റൽ ഫീസ്" becomes "hostal fees". Text outside the script is
// copied unchanged.
func Transliterate(text string) string {
	if !hasScript(text) {
		return text
	}

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	// inherent is set after a consonant until a sign or virama decides its vowel.
	inherent := false
	flush := func() {
		if inherent {
			b.WriteByte('a')
			inherent = false
		}
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if sign, ok := vowelSigns[r]; ok {
			inherent = false
			b.WriteString(sign)
			continue
		}

		switch r {
		case virama:
			inherent = false
			continue
		case zwj, zwnj:
			continue
		}

		flush()

		// റ്റ is the alveolar stop, written as a single t.
		if r == consRa && i+2 < len(runes) && runes[i+1] == virama && runes[i+2] == consRa {
			b.WriteByte('t')
			inherent = true
			i += 2
			continue
		}

		switch {
		case consonants[r] != "":
			b.WriteString(consonants[r])
			inherent = true
		case vowels[r] != "":
			b.WriteString(vowels[r])
		case chillus[r] != "":
			b.WriteString(chillus[r])
		case r == anusvara:
			b.WriteByte('m')
		case r == visarga:
			b.WriteByte('h')
		case r >= '\u0D66' && r <= '\u0D6F':
			b.WriteRune('0' + r - '\u0D66')
		case inScript(r):
			// Archaic and unassigned code points.
		default:
			b.WriteRune(r)
		}
	}
	flush()

	return b.String()
}
