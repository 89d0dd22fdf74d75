package ingestion

import (
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/poiesic/newswire/core"
)

// languageSampleChars bounds how much text the classifier sees.
const languageSampleChars = 500

// DetectLanguage classifies the language of the first usable candidate text.
// Texts shorter than three characters are passed over; unreliable
// classification yields core.LanguageUnknown.
func DetectLanguage(candidates ...string) string {
	for _, text := range candidates {
		text = strings.TrimSpace(text)
		if len(text) < 3 {
			continue
		}

		runes := []rune(text)
		if len(runes) > languageSampleChars {
			text = string(runes[:languageSampleChars])
		}

		info := whatlanggo.Detect(text)
		if !info.IsReliable() {
			return core.LanguageUnknown
		}
		return info.Lang.Iso6393()
	}
	return core.LanguageUnknown
}
