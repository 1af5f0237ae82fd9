package language

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Language
	}{
		{"empty", "", Unknown},
		{"whitespace", "   \n\t", Unknown},
		{"malayalam script", "നമസ്കാരം, കോളേജിന്റെ പ്രവേശന നടപടി എന്താണ്?", Malayalam},
		{"malayalam only", "ലൈബ്രറി", Malayalam},
		{"manglish", "college timing enth aanu", Manglish},
		{"manglish mixed case", "Hostel UNDO? Evide aanu", Manglish},
		{"manglish punctuation", "fees ethra,", Manglish},
		{"english", "Tell me about admissions", English},
		{"english digits", "CSE 2024 placements", English},
		{"mixed script wins", "college timing എന്താണ് enth", Malayalam},
		{"token must be whole word", "anthem alleyway", English},
		{"first code point of block", "\u0D00 ok", Malayalam},
		{"last code point of block", "ok \u0D7F", Malayalam},
		{"kannada neighbour", "\u0CFF ok", English},
		{"sinhala neighbour", "\u0D80 ok", English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text); got != tt.want {
				t.Fatalf("expected %s for %q, got %s", tt.want, tt.text, got)
			}
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	text := "enikku admission venam"
	first := Detect(text)
	for i := 0; i < 10; i++ {
		if got := Detect(text); got != first {
			t.Fatalf("expected %s on every call, got %s", first, got)
		}
	}
}

func TestParse(t *testing.T) {
	for _, l := range []Language{Malayalam, English, Manglish} {
		got, err := Parse(l.Code())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", l.Code(), err)
		}
		if got != l {
			t.Fatalf("expected %s, got %s", l, got)
		}
	}

	if _, err := Parse("ta"); err == nil {
		t.Fatal("expected error for unsupported code")
	}
}

func TestTransliterate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"fees question", "ഹോസ്റ്റൽ ഫീസ് എത്ര?", "hostal fees ethra?"},
		{"anusvara", "നമസ്കാരം", "namaskaaram"},
		{"final virama", "കോളേജ് ബസ്", "kolej bas"},
		{"inherent vowel", "ലൈബ്രറി സമയം", "laibrari samayam"},
		{"digits", "൨൦൨൪", "2024"},
		{"mixed", "CSE ലാബ് timing", "CSE laab timing"},
		{"latin untouched", "hostel fees?", "hostel fees?"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transliterate(tt.text); got != tt.want {
				t.Fatalf("expected %q for %q, got %q", tt.want, tt.text, got)
			}
		})
	}
}
