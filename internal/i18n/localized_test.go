package i18n

import (
	"reflect"
	"testing"
)

func TestLocalizedTextResolveFallsBackToDefault(t *testing.T) {
	text := LocalizedText{"en": "Hello"}

	got, ok := text.Resolve("uz", "en")
	if !ok || got != "Hello" {
		t.Fatalf("expected default fallback Hello, got %q ok=%v", got, ok)
	}
}

func TestLocalizedTextResolveSignalsLegacyWhenEmpty(t *testing.T) {
	for _, text := range []LocalizedText{nil, {}, {"en": "   ", "ru": ""}} {
		if got, ok := text.Resolve("ru", "en"); ok {
			t.Fatalf("expected legacy signal for %v, got %q", text, got)
		}
		if got := text.ResolveOr("ru", "en", "Legacy"); got != "Legacy" {
			t.Fatalf("expected legacy value, got %q", got)
		}
	}
}

func TestLocalizedTextPrefersRequestedLanguage(t *testing.T) {
	text := LocalizedText{"en": "Hello", "de": "Hallo"}
	if got := text.ResolveOr("DE-de", "en", "Legacy"); got != "Hallo" {
		t.Fatalf("expected Hallo, got %q", got)
	}
}

func TestLocalizedTextBlankRequestedUsesDefault(t *testing.T) {
	text := LocalizedText{"en": "Hello", "uz": "  "}
	if got := text.ResolveOr("uz", "en", "Legacy"); got != "Hello" {
		t.Fatalf("blank translation must fall back to default, got %q", got)
	}
}

func TestLocalizedTextWithAndCompact(t *testing.T) {
	base := LocalizedText{"en": "Hello"}
	next := base.With("RU", "Привет").With("en", "")

	if _, ok := base["ru"]; ok {
		t.Fatalf("With must not mutate receiver")
	}
	if !reflect.DeepEqual(next, LocalizedText{"ru": "Привет"}) {
		t.Fatalf("unexpected result %v", next)
	}
	if got := (LocalizedText{"EN": "x", "de": " "}).Compact(); !reflect.DeepEqual(got, LocalizedText{"en": "x"}) {
		t.Fatalf("unexpected compact result %v", got)
	}
	if got := (LocalizedText{"de": " "}).Compact(); got != nil {
		t.Fatalf("expected nil compact result, got %v", got)
	}
}

func TestLocalizedTextLanguagesOrder(t *testing.T) {
	text := LocalizedText{"de": "Hallo", "en": "Hello", "ru": ""}
	if got := text.Languages(); !reflect.DeepEqual(got, []string{"en", "de"}) {
		t.Fatalf("unexpected languages %v", got)
	}
}

func TestLocalizedTextScanValue(t *testing.T) {
	original := LocalizedText{"en": "Hello", "uz": "Salom"}
	value, err := original.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var decoded LocalizedText
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Fatalf("expected %v, got %v", original, decoded)
	}

	if err := decoded.Scan(nil); err != nil || decoded != nil {
		t.Fatalf("expected nil after scanning NULL, got %v err=%v", decoded, err)
	}
	if err := decoded.Scan(42); err == nil {
		t.Fatalf("expected error scanning int")
	}
}
