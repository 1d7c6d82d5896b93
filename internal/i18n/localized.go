package i18n

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// LocalizedText maps a language code to the translated value of one logical
// field. Missing keys and blank values both mean "no translation".
type LocalizedText map[string]string

// Get returns the trimmed-non-blank value stored for lang.
func (t LocalizedText) Get(lang string) (string, bool) {
	if t == nil {
		return "", false
	}
	value, ok := t[NormalizeLocale(lang)]
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// Resolve returns the value for lang, falling back to def. The boolean is
// false when neither is present, in which case callers fall back to the
// legacy single-language column.
func (t LocalizedText) Resolve(lang, def string) (string, bool) {
	if value, ok := t.Get(lang); ok {
		return value, true
	}
	if value, ok := t.Get(def); ok {
		return value, true
	}
	return "", false
}

// ResolveOr applies Resolve and then returns legacy.
func (t LocalizedText) ResolveOr(lang, def, legacy string) string {
	if value, ok := t.Resolve(lang, def); ok {
		return value
	}
	return legacy
}

// With returns a copy of t with lang set to value. Blank values remove the key.
func (t LocalizedText) With(lang, value string) LocalizedText {
	out := t.Clone()
	if out == nil {
		out = LocalizedText{}
	}
	lang = NormalizeLocale(lang)
	if strings.TrimSpace(value) == "" {
		delete(out, lang)
		return out
	}
	out[lang] = value
	return out
}

// Clone returns a shallow copy; nil stays nil.
func (t LocalizedText) Clone() LocalizedText {
	if t == nil {
		return nil
	}
	out := make(LocalizedText, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Compact drops blank values and normalises keys.
func (t LocalizedText) Compact() LocalizedText {
	if len(t) == 0 {
		return nil
	}
	out := make(LocalizedText, len(t))
	for k, v := range t {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out[NormalizeLocale(k)] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Languages returns the codes with a non-blank value, in SupportedLocales
// order followed by any others.
func (t LocalizedText) Languages() []string {
	var out []string
	seen := map[string]struct{}{}
	for _, code := range SupportedLocales() {
		if _, ok := t.Get(code); ok {
			out = append(out, code)
			seen[code] = struct{}{}
		}
	}
	for code := range t {
		if _, ok := seen[code]; ok {
			continue
		}
		if _, ok := t.Get(code); ok {
			out = append(out, code)
		}
	}
	return out
}

// Value implements driver.Valuer so the map is stored as a JSON object.
func (t LocalizedText) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(map[string]string(t))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Scan implements sql.Scanner for JSON object columns.
func (t *LocalizedText) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("i18n: cannot scan %T into LocalizedText", src)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*t = nil
		return nil
	}
	var decoded map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("i18n: decode localized text: %w", err)
	}
	*t = LocalizedText(decoded)
	return nil
}
