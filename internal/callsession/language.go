package callsession

import "strings"

// Script and keyword heuristics for classifying a single utterance. Each
// utterance is classified independently so a caller who switches languages
// mid-call is followed immediately.

var spanishMarkers = []rune{'ñ', 'á', 'é', 'í', 'ó', 'ú', '¿', '¡'}

var spanishWords = []string{
	"hola", "necesito", "quiero", "página", "sitio", "web",
	"proyecto", "diseño", "bueno", "gracias", "cómo", "qué",
	"por favor", "empresa", "negocio", "tienda", "güey", "mande",
	"chido", "neta", "órale", "pues", "también", "estoy",
}

// hindiWords covers common Hindi words written in Latin script, since many
// callers transliterate rather than use Devanagari.
var hindiWords = []string{
	"namaste", "kya", "hai", "mujhe", "chahiye", "kaise",
	"acha", "thik", "bhai", "yaar", "suno", "dekhiye",
	"zaroorat", "banani", "haan", "nahi",
}

// DetectLanguage classifies an utterance as "en", "es" or "hi".
func DetectLanguage(text string) string {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return "hi"
		}
	}

	lower := strings.ToLower(text)
	for _, m := range spanishMarkers {
		if strings.ContainsRune(lower, m) {
			return "es"
		}
	}
	for _, w := range spanishWords {
		if containsWord(lower, w) {
			return "es"
		}
	}
	for _, w := range hindiWords {
		if containsWord(lower, w) {
			return "hi"
		}
	}
	return "en"
}

// containsWord reports whether w occurs in text on word boundaries, so that
// e.g. "hai" does not match inside "chair".
func containsWord(text, w string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		beforeOK := start == 0 || !isWordChar(rune(text[start-1]))
		afterOK := end == len(text) || !isWordChar(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
