package i18n

import "testing"

func TestResolverThreeTierFallback(t *testing.T) {
	r := NewResolver("")
	if r.Default != English {
		t.Fatalf("expected default %q, got %q", English, r.Default)
	}

	cases := []struct {
		name   string
		text   LocalizedText
		lang   string
		legacy string
		want   string
	}{
		{name: "requested", text: LocalizedText{"en": "Hello", "uz": "Salom"}, lang: "uz", legacy: "Old", want: "Salom"},
		{name: "default", text: LocalizedText{"en": "Hello"}, lang: "uz", legacy: "Old", want: "Hello"},
		{name: "legacy", text: LocalizedText{}, lang: "ru", legacy: "Old", want: "Old"},
		{name: "nil map", text: nil, lang: "de", legacy: "Old", want: "Old"},
		{name: "blank lang uses default", text: LocalizedText{"en": "Hello", "ru": "Привет"}, lang: " ", legacy: "Old", want: "Hello"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.TextOr(tc.text, tc.lang, tc.legacy); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestResolverTextSignalsMissing(t *testing.T) {
	r := Resolver{Default: "ru"}
	if _, ok := r.Text(LocalizedText{"en": "Hello"}, "uz"); ok {
		t.Fatalf("expected missing signal when neither uz nor ru exist")
	}
	if got, ok := r.Text(LocalizedText{"ru": "Привет"}, "uz"); !ok || got != "Привет" {
		t.Fatalf("expected ru fallback, got %q ok=%v", got, ok)
	}
}

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{"ru-RU": "ru", " EN ": "en", "uz_Latn": "uz", "": "", "de": "de"}
	for in, want := range cases {
		if got := NormalizeLocale(in); got != want {
			t.Fatalf("NormalizeLocale(%q) = %q, want %q", in, got, want)
		}
	}
	if !IsSupported("RU-ru") || IsSupported("fr") {
		t.Fatalf("unexpected IsSupported results")
	}
	if !IsSupported("fr", "en", "fr") {
		t.Fatalf("expected explicit locale list to be honoured")
	}
}
