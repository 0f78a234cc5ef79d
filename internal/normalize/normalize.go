// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import "strings"

// iso639_2to1 maps the ISO 639-2 (3-letter) codes that show up in
// licensed catalog feeds to ISO 639-1 (2-letter) codes. Bibliographic
// variants included.
var iso639_2to1 = map[string]string{
	"eng": "en", "spa": "es", "fra": "fr", "fre": "fr", "deu": "de",
	"ger": "de", "ita": "it", "por": "pt", "nld": "nl", "dut": "nl",
	"rus": "ru", "jpn": "ja", "zho": "zh", "chi": "zh", "kor": "ko",
	"ara": "ar", "hin": "hi", "pol": "pl", "tur": "tr", "tha": "th",
	"vie": "vi", "ind": "id", "ukr": "uk",
}

// languageNameToCode maps spelled-out language names to ISO 639-1 codes.
var languageNameToCode = map[string]string{
	"english": "en", "spanish": "es", "french": "fr", "german": "de",
	"italian": "it", "portuguese": "pt", "dutch": "nl", "russian": "ru",
	"japanese": "ja", "chinese": "zh", "mandarin": "zh", "korean": "ko",
	"arabic": "ar", "hindi": "hi", "polish": "pl", "turkish": "tr",
	"thai": "th", "vietnamese": "vi", "indonesian": "id", "ukrainian": "uk",
}

// Locale normalizes a language identifier to a lowercase ISO 639-1 code.
// It accepts 2-letter codes (any case), region-tagged codes like "en-US",
// common 3-letter codes, and spelled-out names. Returns "" and false
// when the input cannot be resolved.
func Locale(input string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return "", false
	}

	// Region tags narrow a locale, they never change the language.
	if idx := strings.IndexAny(s, "-_"); idx > 0 {
		s = s[:idx]
	}

	switch len(s) {
	case 2:
		if isAlpha(s) {
			return s, true
		}
	case 3:
		if code, ok := iso639_2to1[s]; ok {
			return code, true
		}
	}

	if code, ok := languageNameToCode[s]; ok {
		return code, true
	}

	return "", false
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
