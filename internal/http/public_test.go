package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/internal/commands"
	"github.com/pharmaweb/sitecms/internal/disclaimer"
	"github.com/pharmaweb/sitecms/internal/i18n"
	"github.com/pharmaweb/sitecms/internal/media"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/internal/preferences"
)

const disclaimerText = "I confirm that I am a medical professional."

func TestPublicSite_NewsListingShowsPublishedPosts(t *testing.T) {
	mux, services := setupPublicSite(t, false)
	for i := 1; i <= 11; i++ {
		seedNews(t, services, fmt.Sprintf("Story %02d", i), "Event", i != 11)
	}

	resp := doJSONRequest(t, mux, http.MethodGet, "/news?page=2", nil, http.StatusOK)
	var page publicListResponse
	decodeJSONBody(t, resp, &page)
	if page.Total != 10 {
		t.Fatalf("expected 10 published stories, got %d", page.Total)
	}
	if page.Page != 2 || page.TotalPages != 2 || len(page.Items) != 1 {
		t.Fatalf("expected 9 per page, got page=%d pages=%d items=%d", page.Page, page.TotalPages, len(page.Items))
	}
	if !page.HasPrev || page.HasNext {
		t.Fatalf("unexpected prev/next flags %+v", page)
	}
	if page.Items[0].Slug == "" || page.Items[0].Excerpt == "" {
		t.Fatalf("expected populated card, got %+v", page.Items[0])
	}
}

func TestPublicSite_SearchOverridesCategory(t *testing.T) {
	mux, services := setupPublicSite(t, false)
	seedNews(t, services, "Factory tour", "Event", true)
	seedNews(t, services, "New tablets", "Product", true)

	resp := doJSONRequest(t, mux, http.MethodGet, "/news?category=Event&q=tablets", nil, http.StatusOK)
	var page publicListResponse
	decodeJSONBody(t, resp, &page)
	if page.Total != 1 || page.Items[0].Title != "New tablets" {
		t.Fatalf("expected query to ignore category, got %+v", page.Items)
	}

	resp = doJSONRequest(t, mux, http.MethodGet, "/news?category=event", nil, http.StatusOK)
	page = publicListResponse{}
	decodeJSONBody(t, resp, &page)
	if page.Total != 1 || page.Items[0].Title != "Factory tour" {
		t.Fatalf("expected category filter, got %+v", page.Items)
	}
	if len(page.Categories) != 2 {
		t.Fatalf("expected both categories, got %v", page.Categories)
	}
}

func TestPublicSite_PostView(t *testing.T) {
	mux, services := setupPublicSite(t, false)
	seedNews(t, services, "Open day", "Event", true)
	seedNews(t, services, "Hidden", "", false)

	resp := doJSONRequest(t, mux, http.MethodGet, "/news/open-day?lang=ru", nil, http.StatusOK)
	var view posts.View
	decodeJSONBody(t, resp, &view)
	if view.Lang != "ru" || view.Title != "Open day (ru)" {
		t.Fatalf("expected russian view, got lang=%q title=%q", view.Lang, view.Title)
	}
	if !strings.Contains(view.BodyHTML, "<figure>") || len(view.Gallery) != 1 {
		t.Fatalf("expected compiled blocks and gallery, got %+v", view)
	}
	if got := resp.Header().Get("Content-Language"); got != "ru" {
		t.Fatalf("expected Content-Language ru, got %q", got)
	}

	for _, path := range []string{"/news/hidden", "/news/missing"} {
		resp := doJSONRequest(t, mux, http.MethodGet, path, nil, http.StatusNotFound)
		var errResp errorResponse
		decodeJSONBody(t, resp, &errResp)
		if !strings.HasPrefix(errResp.Status, "Error: ") {
			t.Fatalf("expected flat error for %s, got %+v", path, errResp)
		}
	}
}

func TestPublicSite_BlogGatedByDisclaimer(t *testing.T) {
	mux, services := setupPublicSite(t, true)
	if _, err := services[posts.KindBlog].Create(context.Background(), posts.SaveInput{
		TitleI18N:   i18n.LocalizedText{"en": "Hypertension"},
		ContentI18N: i18n.LocalizedText{"en": "<p>Guidelines</p>"},
		Published:   true,
	}); err != nil {
		t.Fatalf("seed blog: %v", err)
	}

	doJSONRequest(t, mux, http.MethodGet, "/blog", nil, http.StatusForbidden)
	doJSONRequest(t, mux, http.MethodGet, "/news", nil, http.StatusOK)

	rejected := doJSONRequest(t, mux, http.MethodPost, "/api/confirm-medical-professional",
		map[string]string{"disclaimer": "ok"}, http.StatusBadRequest)
	var failure confirmResponse
	decodeJSONBody(t, rejected, &failure)
	if failure.Success || failure.Error == "" {
		t.Fatalf("expected failure response, got %+v", failure)
	}

	confirmed := doJSONRequest(t, mux, http.MethodPost, "/api/confirm-medical-professional",
		map[string]string{"disclaimer": disclaimerText}, http.StatusOK)
	var success confirmResponse
	decodeJSONBody(t, confirmed, &success)
	if !success.Success {
		t.Fatalf("expected success, got %+v", success)
	}
	cookie := sessionCookie(t, confirmed)

	resp := doCookieRequest(t, mux, http.MethodGet, "/blog", nil, cookie, http.StatusOK)
	var page publicListResponse
	decodeJSONBody(t, resp, &page)
	if page.Total != 1 {
		t.Fatalf("expected gated blog listing after confirmation, got %d", page.Total)
	}
	doCookieRequest(t, mux, http.MethodGet, "/blog/hypertension", nil, cookie, http.StatusOK)
}

func TestPublicSite_LanguagePreference(t *testing.T) {
	mux, services := setupPublicSite(t, false)
	seedNews(t, services, "Open day", "Event", true)

	saved := doJSONRequest(t, mux, http.MethodPost, "/api/language", map[string]string{"lang": "DE"}, http.StatusOK)
	cookie := sessionCookie(t, saved)

	resp := doCookieRequest(t, mux, http.MethodGet, "/news/open-day", nil, cookie, http.StatusOK)
	var view posts.View
	decodeJSONBody(t, resp, &view)
	if view.Lang != "de" || view.Title != "Open day (de)" {
		t.Fatalf("expected stored language, got lang=%q title=%q", view.Lang, view.Title)
	}

	resp = doCookieRequest(t, mux, http.MethodGet, "/news/open-day?lang=ru", nil, cookie, http.StatusOK)
	view = posts.View{}
	decodeJSONBody(t, resp, &view)
	if view.Lang != "ru" {
		t.Fatalf("expected query language to win, got %q", view.Lang)
	}

	resp = doJSONRequest(t, mux, http.MethodGet, "/news/open-day", nil, http.StatusOK)
	view = posts.View{}
	decodeJSONBody(t, resp, &view)
	if view.Lang != "en" || view.Title != "Open day" {
		t.Fatalf("expected default language without session, got lang=%q title=%q", view.Lang, view.Title)
	}

	doJSONRequest(t, mux, http.MethodPost, "/api/language", map[string]string{"lang": "fr"}, http.StatusBadRequest)
}

func setupPublicSite(t *testing.T, gateBlog bool) (*http.ServeMux, commands.PostServices) {
	t.Helper()
	services := newTestServices(media.NewMemoryStorage())
	store := preferences.NewMemoryStore()
	site := NewPublicSite(
		WithPublicServices(services),
		WithPreferences(store),
		WithDisclaimer(disclaimer.NewService(store, disclaimer.WithRequiredText(disclaimerText)), gateBlog),
		WithLocales("en", i18n.SupportedLocales()),
	)
	mux := http.NewServeMux()
	if err := site.Register(mux); err != nil {
		t.Fatalf("register site: %v", err)
	}
	return mux, services
}

func seedNews(t *testing.T, services commands.PostServices, title, category string, published bool) {
	t.Helper()
	_, err := services[posts.KindNews].Create(context.Background(), posts.SaveInput{
		TitleI18N: i18n.LocalizedText{"en": title, "ru": title + " (ru)", "de": title + " (de)"},
		ContentBlocks: blocks.List{
			blocks.Text("<p>" + title + "</p>"),
			blocks.Image("https://cdn.example.com/"+strings.ReplaceAll(strings.ToLower(title), " ", "-")+".png", ""),
		},
		Category:  category,
		Published: published,
	})
	if err != nil {
		t.Fatalf("seed news %q: %v", title, err)
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == DefaultSessionCookie {
			return cookie
		}
	}
	t.Fatalf("expected %s cookie", DefaultSessionCookie)
	return nil
}

func doCookieRequest(t *testing.T, mux http.Handler, method, path string, body any, cookie *http.Cookie, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("expected status %d got %d (%s)", wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}
