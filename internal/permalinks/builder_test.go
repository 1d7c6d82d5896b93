package permalinks_test

import (
	"errors"
	"testing"

	"github.com/pharmaweb/sitecms/internal/permalinks"
)

func newBuilder() *permalinks.Builder {
	return permalinks.NewBuilder(permalinks.Options{
		BaseURL:       "https://example.com/",
		DefaultLocale: "en",
		Locales:       []string{"en", "uz", "ru", "de"},
	})
}

func TestBuilderPost(t *testing.T) {
	builder := newBuilder()
	cases := []struct {
		kind, slug, lang, want string
	}{
		{"blog", "flu-season", "en", "https://example.com/blog/flu-season"},
		{"news", "open-day", "", "https://example.com/news/open-day"},
		{"news", "open-day", "uz", "https://example.com/uz/news/open-day"},
		{"blog", "flu-season", "ru-RU", "https://example.com/ru/blog/flu-season"},
		{"blog", "flu-season", "fr", "https://example.com/blog/flu-season"},
	}
	for _, tc := range cases {
		t.Run(tc.kind+"/"+tc.lang, func(t *testing.T) {
			got, err := builder.Post(tc.kind, tc.slug, tc.lang)
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestBuilderProductAndIndex(t *testing.T) {
	builder := newBuilder()
	got, err := builder.Product("42", "de")
	if err != nil || got != "https://example.com/de/products/42" {
		t.Fatalf("unexpected product url %q err=%v", got, err)
	}
	got, err = builder.Index("news", "en", 1)
	if err != nil || got != "https://example.com/news" {
		t.Fatalf("unexpected index url %q err=%v", got, err)
	}
}

func TestBuilderErrors(t *testing.T) {
	builder := newBuilder()
	if _, err := builder.Post("events", "x", "en"); !errors.Is(err, permalinks.ErrKindUnknown) {
		t.Fatalf("expected ErrKindUnknown, got %v", err)
	}
	if _, err := builder.Post("blog", " ", "en"); !errors.Is(err, permalinks.ErrSlugRequired) {
		t.Fatalf("expected ErrSlugRequired, got %v", err)
	}
	if _, err := builder.Product("", "en"); !errors.Is(err, permalinks.ErrIDRequired) {
		t.Fatalf("expected ErrIDRequired, got %v", err)
	}
}
