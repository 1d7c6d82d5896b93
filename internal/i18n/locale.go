package i18n

import "strings"

// Supported language codes.
const (
	English = "en"
	Uzbek   = "uz"
	Russian = "ru"
	German  = "de"
)

// DefaultLocale is used when configuration does not name one.
const DefaultLocale = English

// SupportedLocales lists the languages the site is translated into, default first.
func SupportedLocales() []string {
	return []string{English, Uzbek, Russian, German}
}

// NormalizeLocale lower-cases code, trims it and drops a region suffix, so
// "ru-RU" and "RU_ru" both become "ru".
func NormalizeLocale(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	return code
}

// IsSupported reports whether code normalises to one of locales. An empty
// locales slice means SupportedLocales.
func IsSupported(code string, locales ...string) bool {
	if len(locales) == 0 {
		locales = SupportedLocales()
	}
	code = NormalizeLocale(code)
	for _, candidate := range locales {
		if NormalizeLocale(candidate) == code {
			return true
		}
	}
	return false
}
