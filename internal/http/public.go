package http

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pharmaweb/sitecms/internal/disclaimer"
	"github.com/pharmaweb/sitecms/internal/i18n"
	"github.com/pharmaweb/sitecms/internal/listing"
	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/internal/preferences"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// PublicSite serves the visitor facing listings and post pages together with
// the language and disclaimer endpoints.
type PublicSite struct {
	services       map[posts.Kind]posts.Service
	presenter      *posts.Presenter
	pageSizes      map[posts.Kind]int
	strictCategory bool
	disclaimer     *disclaimer.Service
	gateBlog       bool
	preferences    interfaces.PreferenceStore
	defaultLocale  string
	locales        []string
	cookie         string
	logger         interfaces.Logger
}

// PublicOption mutates the PublicSite configuration.
type PublicOption func(*PublicSite)

// NewPublicSite constructs a PublicSite. Blog pages list 12 posts and news
// pages 9 unless configured otherwise.
func NewPublicSite(opts ...PublicOption) *PublicSite {
	site := &PublicSite{
		pageSizes:     map[posts.Kind]int{posts.KindBlog: 12, posts.KindNews: 9},
		defaultLocale: i18n.DefaultLocale,
		locales:       i18n.SupportedLocales(),
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(site)
		}
	}
	return site
}

// WithPublicServices wires the collections rendered at /{kind}.
func WithPublicServices(services map[posts.Kind]posts.Service) PublicOption {
	return func(site *PublicSite) {
		site.services = services
	}
}

// WithPresenter sets the presenter that localizes records.
func WithPresenter(presenter *posts.Presenter) PublicOption {
	return func(site *PublicSite) {
		site.presenter = presenter
	}
}

// WithPageSize overrides the page size of one collection.
func WithPageSize(kind posts.Kind, size int) PublicOption {
	return func(site *PublicSite) {
		if size > 0 {
			site.pageSizes[kind] = size
		}
	}
}

// WithStrictCategory applies the category filter together with a search query.
func WithStrictCategory(strict bool) PublicOption {
	return func(site *PublicSite) {
		site.strictCategory = strict
	}
}

// WithDisclaimer wires the confirmation endpoint. When gateBlog is set blog
// routes answer 403 until the session confirmed.
func WithDisclaimer(service *disclaimer.Service, gateBlog bool) PublicOption {
	return func(site *PublicSite) {
		site.disclaimer = service
		site.gateBlog = gateBlog
	}
}

// WithPreferences wires the store holding each session's language.
func WithPreferences(store interfaces.PreferenceStore) PublicOption {
	return func(site *PublicSite) {
		site.preferences = store
	}
}

// WithLocales sets the default and the accepted languages.
func WithLocales(defaultLocale string, locales []string) PublicOption {
	return func(site *PublicSite) {
		if code := i18n.NormalizeLocale(defaultLocale); code != "" {
			site.defaultLocale = code
		}
		if len(locales) > 0 {
			site.locales = append([]string(nil), locales...)
		}
	}
}

// WithSessionCookie names the visitor session cookie.
func WithSessionCookie(name string) PublicOption {
	return func(site *PublicSite) {
		site.cookie = name
	}
}

// WithPublicLogger sets the logger used for request failures.
func WithPublicLogger(logger interfaces.Logger) PublicOption {
	return func(site *PublicSite) {
		if logger != nil {
			site.logger = logger
		}
	}
}

// Register attaches the public routes to mux.
func (site *PublicSite) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if site == nil {
		return fmt.Errorf("http: public site is nil")
	}
	if len(site.services) == 0 {
		return ErrServicesRequired
	}
	if site.presenter == nil {
		site.presenter = posts.NewPresenter(i18n.NewResolver(site.defaultLocale), nil, nil)
	}

	kinds := make([]string, 0, len(site.services))
	for kind := range site.services {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, name := range kinds {
		kind := posts.Kind(name)
		root := joinPath("", name)
		mux.HandleFunc("GET "+root, site.listHandler(kind))
		mux.HandleFunc("GET "+root+"/{slug}", site.postHandler(kind))
	}

	mux.HandleFunc("POST /api/confirm-medical-professional", site.handleConfirm)
	mux.HandleFunc("GET /api/confirm-medical-professional", site.handleConfirmed)
	mux.HandleFunc("GET /api/language", site.handleGetLanguage)
	mux.HandleFunc("POST /api/language", site.handleSetLanguage)
	return nil
}

func (site *PublicSite) languages() languages {
	return languages{
		resolver: i18n.NewResolver(site.defaultLocale),
		locales:  site.locales,
		store:    site.preferences,
		sessions: newSessions(site.cookie),
		logger:   site.logger,
	}
}

// gate enforces the disclaimer on blog routes.
func (site *PublicSite) gate(r *http.Request, kind posts.Kind) error {
	if !site.gateBlog || kind != posts.KindBlog || site.disclaimer == nil {
		return nil
	}
	session := newSessions(site.cookie).read(r)
	if session == "" {
		return ErrDisclaimerRequired
	}
	confirmed, err := site.disclaimer.Confirmed(r.Context(), session)
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrDisclaimerRequired
	}
	return nil
}

type publicListResponse struct {
	Kind       posts.Kind         `json:"kind"`
	Lang       string             `json:"lang"`
	Items      []posts.Card       `json:"items"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
	Total      int                `json:"total"`
	HasPrev    bool               `json:"has_prev"`
	HasNext    bool               `json:"has_next"`
	Window     []listing.PageLink `json:"pages"`
	Categories []string           `json:"categories"`
	Query      string             `json:"query,omitempty"`
	Category   string             `json:"category,omitempty"`
}

func (site *PublicSite) listHandler(kind posts.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := site.gate(r, kind); err != nil {
			site.fail(w, r, err)
			return
		}
		records, err := site.services[kind].List(r.Context(), posts.ListOptions{PublishedOnly: true})
		if err != nil {
			site.fail(w, r, err)
			return
		}

		lang := site.languages().resolve(r)
		extract := site.presenter.Fields(lang)
		query := r.URL.Query()
		ctrl := listing.New(extract, listing.Options{PageSize: site.pageSizes[kind], StrictCategory: site.strictCategory})
		ctrl.SetQuery(query.Get("q"))
		ctrl.SetCategory(query.Get("category"))
		ctrl.SetPage(parsePage(query.Get("page")))
		page := ctrl.Apply(records)

		cards := make([]posts.Card, 0, len(page.Items))
		for _, rec := range page.Items {
			cards = append(cards, site.presenter.Card(kind, rec, lang))
		}
		w.Header().Set("Content-Language", lang)
		writeJSON(w, http.StatusOK, publicListResponse{
			Kind:       kind,
			Lang:       lang,
			Items:      cards,
			Page:       page.Number,
			TotalPages: page.TotalPages,
			Total:      page.Total,
			HasPrev:    page.HasPrev,
			HasNext:    page.HasNext,
			Window:     page.Window,
			Categories: listing.Categories(records, extract),
			Query:      ctrl.Query(),
			Category:   ctrl.Category(),
		})
	}
}

func (site *PublicSite) postHandler(kind posts.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := site.gate(r, kind); err != nil {
			site.fail(w, r, err)
			return
		}
		slug := strings.TrimSpace(r.PathValue("slug"))
		record, err := site.services[kind].GetBySlug(r.Context(), slug)
		if err != nil {
			site.fail(w, r, err)
			return
		}
		if !record.Published {
			site.fail(w, r, &posts.NotFoundError{Resource: string(kind), Key: slug})
			return
		}
		lang := site.languages().resolve(r)
		w.Header().Set("Content-Language", lang)
		writeJSON(w, http.StatusOK, site.presenter.View(kind, record, lang))
	}
}

type confirmRequest struct {
	Disclaimer string `json:"disclaimer"`
}

type confirmResponse struct {
	Success   bool   `json:"success"`
	Confirmed bool   `json:"confirmed,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (site *PublicSite) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	err := decodeJSON(r, &req)
	if err == nil {
		if site.disclaimer == nil {
			err = disclaimer.ErrStoreNotConfigured
		} else {
			session := newSessions(site.cookie).ensure(w, r)
			err = site.disclaimer.Confirm(r.Context(), session, req.Disclaimer)
		}
	}
	if err != nil {
		status, _ := mapError(err)
		if status >= http.StatusInternalServerError {
			site.logger.WithContext(r.Context()).Error("http.disclaimer.confirm_failed", "error", err)
		}
		writeJSON(w, status, confirmResponse{Success: false, Error: errorMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, confirmResponse{Success: true, Confirmed: true})
}

func (site *PublicSite) handleConfirmed(w http.ResponseWriter, r *http.Request) {
	confirmed := false
	if site.disclaimer != nil {
		if session := newSessions(site.cookie).read(r); session != "" {
			ok, err := site.disclaimer.Confirmed(r.Context(), session)
			if err != nil {
				site.fail(w, r, err)
				return
			}
			confirmed = ok
		}
	}
	writeJSON(w, http.StatusOK, confirmResponse{Success: true, Confirmed: confirmed})
}

type languageRequest struct {
	Lang string `json:"lang"`
}

type languageResponse struct {
	Lang    string   `json:"lang"`
	Locales []string `json:"locales"`
}

func (site *PublicSite) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, languageResponse{Lang: site.languages().resolve(r), Locales: site.locales})
}

func (site *PublicSite) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := decodeJSON(r, &req); err != nil {
		site.fail(w, r, err)
		return
	}
	langs := site.languages()
	lang, ok := langs.supported(req.Lang)
	if !ok {
		site.fail(w, r, fmt.Errorf("%w: %q", ErrLanguageInvalid, req.Lang))
		return
	}
	if site.preferences == nil {
		site.fail(w, r, errors.New("http: preference store is not configured"))
		return
	}
	session := langs.sessions.ensure(w, r)
	if err := site.preferences.Set(r.Context(), session, preferences.KeyLanguage, lang); err != nil {
		site.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, languageResponse{Lang: lang, Locales: site.locales})
}

func (site *PublicSite) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		site.logger.WithContext(r.Context()).Error("http.public.request_failed",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, payload)
}
