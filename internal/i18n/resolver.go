package i18n

// Resolver applies the requested -> default -> legacy fallback chain used
// wherever localized titles, summaries and bodies are displayed.
type Resolver struct {
	Default string
}

// NewResolver returns a Resolver for def, using DefaultLocale when blank.
func NewResolver(def string) Resolver {
	def = NormalizeLocale(def)
	if def == "" {
		def = DefaultLocale
	}
	return Resolver{Default: def}
}

// Text resolves lang against the default language. ok is false when the
// caller must use its legacy field.
func (r Resolver) Text(text LocalizedText, lang string) (string, bool) {
	return text.Resolve(r.lang(lang), r.defaultLocale())
}

// TextOr resolves lang and falls back to legacy. A default-language
// translation always wins over the legacy field.
func (r Resolver) TextOr(text LocalizedText, lang, legacy string) string {
	return text.ResolveOr(r.lang(lang), r.defaultLocale(), legacy)
}

// Lang normalises lang, returning the default when it is blank.
func (r Resolver) Lang(lang string) string {
	return r.lang(lang)
}

func (r Resolver) lang(lang string) string {
	if normalized := NormalizeLocale(lang); normalized != "" {
		return normalized
	}
	return r.defaultLocale()
}

func (r Resolver) defaultLocale() string {
	if r.Default == "" {
		return DefaultLocale
	}
	return r.Default
}
