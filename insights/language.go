package insights

import (
	"strings"
	"unicode"
)

const frenchMarks = "éèêàçùâîôûëïü"

// DetectLanguage makes a coarse script-based guess: "ar" for Arabic script, "fr" when French
// diacritics appear, otherwise "en".
func DetectLanguage(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Arabic, r) {
			return "ar"
		}
	}
	if strings.ContainsAny(strings.ToLower(text), frenchMarks) {
		return "fr"
	}
	return "en"
}
