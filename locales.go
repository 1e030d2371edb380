package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// FallbackLocale is the locale whose catalog backs every other one.
const FallbackLocale = "en"

// DefaultLocales are the locales served when none are configured.
var DefaultLocales = []string{"en", "de", "uk"}

// localeNames maps locale codes to human-readable names for reports
// and machine translation prompts.
var localeNames = map[string]string{
	"en": "English",
	"de": "German",
	"uk": "Ukrainian",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"tr": "Turkish",
}

// LocaleName returns a human-readable name for a locale code, falling
// back to the code itself.
func LocaleName(locale string) string {
	if name, ok := localeNames[baseLocale(locale)]; ok {
		return name
	}
	return locale
}

// NormalizeLocale canonicalizes user-supplied locale strings ("de-DE",
// "de_DE.UTF-8", "DE") to the short form used as a catalog directory
// name. Unparseable input is returned lowercased with separators kept.
func NormalizeLocale(locale string) string {
	trimmed := strings.TrimSpace(locale)
	if i := strings.IndexByte(trimmed, '.'); i >= 0 {
		trimmed = trimmed[:i]
	}
	trimmed = strings.ReplaceAll(trimmed, "_", "-")

	tag, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToLower(trimmed)
	}
	base, _ := tag.Base()
	return base.String()
}

func baseLocale(locale string) string {
	return NormalizeLocale(locale)
}
