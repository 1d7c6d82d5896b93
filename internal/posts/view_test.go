package posts_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/internal/i18n"
	"github.com/pharmaweb/sitecms/internal/posts"
)

type stubLinker struct{}

func (stubLinker) Post(kind, slug, lang string) (string, error) {
	return fmt.Sprintf("/%s/%s/%s", lang, kind, slug), nil
}

func sampleRecord() *posts.Record {
	list := blocks.List{
		blocks.Text("<p>Hello <strong>world</strong></p>"),
		blocks.Image("https://cdn.example.com/inside.png", "Inside"),
	}
	return &posts.Record{
		Slug:          "hello",
		Title:         "Hello",
		TitleI18N:     i18n.LocalizedText{"en": "Hello", "ru": "Привет"},
		Content:       blocks.Compile(list, ""),
		ContentI18N:   i18n.LocalizedText{"en": blocks.Compile(list, ""), "de": "<p>Hallo Welt</p>"},
		ContentBlocks: list,
		ImageURL:      "https://cdn.example.com/cover.png",
		VideoURL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		CreatedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPresenterView(t *testing.T) {
	presenter := posts.NewPresenter(i18n.NewResolver(i18n.English), nil, stubLinker{})
	rec := sampleRecord()

	t.Run("default language renders blocks", func(t *testing.T) {
		view := presenter.View(posts.KindNews, rec, "")
		if view.Lang != "en" || view.Title != "Hello" {
			t.Fatalf("unexpected view %+v", view)
		}
		if !strings.Contains(view.BodyHTML, `<img src="https://cdn.example.com/inside.png" alt="Inside" />`) {
			t.Fatalf("expected compiled blocks, got %q", view.BodyHTML)
		}
		if view.Permalink != "/en/news/hello" {
			t.Fatalf("unexpected permalink %q", view.Permalink)
		}
		if view.VideoEmbedURL != "https://www.youtube.com/embed/dQw4w9WgXcQ?rel=0&modestbranding=1" {
			t.Fatalf("unexpected embed url %q", view.VideoEmbedURL)
		}
		if len(view.Gallery) != 3 || view.Gallery[0].URL != rec.ImageURL {
			t.Fatalf("expected cover first in gallery, got %+v", view.Gallery)
		}
	})

	t.Run("translation wins over blocks", func(t *testing.T) {
		view := presenter.View(posts.KindNews, rec, "de-DE")
		if view.BodyHTML != "<p>Hallo Welt</p>" {
			t.Fatalf("expected german body, got %q", view.BodyHTML)
		}
		if view.Title != "Hello" {
			t.Fatalf("expected english title fallback, got %q", view.Title)
		}
	})

	t.Run("missing translation falls back", func(t *testing.T) {
		view := presenter.View(posts.KindNews, rec, "ru")
		if view.Title != "Привет" {
			t.Fatalf("expected russian title, got %q", view.Title)
		}
		if !strings.Contains(view.BodyHTML, "Hello <strong>world</strong>") {
			t.Fatalf("expected english body fallback, got %q", view.BodyHTML)
		}
	})
}

func TestPresenterCard(t *testing.T) {
	presenter := posts.NewPresenter(i18n.NewResolver(i18n.English), nil, nil)
	rec := sampleRecord()

	card := presenter.Card(posts.KindNews, rec, "en")
	if card.Excerpt != "Hello world Inside" {
		t.Fatalf("expected generated excerpt, got %q", card.Excerpt)
	}
	if card.ThumbnailURL != rec.ImageURL || card.Permalink != "" {
		t.Fatalf("unexpected card %+v", card)
	}

	rec.ImageURL = ""
	rec.SummaryI18N = i18n.LocalizedText{"en": "Short summary"}
	card = presenter.Card(posts.KindNews, rec, "en")
	if card.ThumbnailURL != "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg" {
		t.Fatalf("expected youtube thumbnail, got %q", card.ThumbnailURL)
	}
	if card.Excerpt != "Short summary" {
		t.Fatalf("expected summary as excerpt, got %q", card.Excerpt)
	}
}
