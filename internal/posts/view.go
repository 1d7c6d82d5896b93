package posts

import (
	"time"

	"github.com/google/uuid"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/internal/i18n"
	"github.com/pharmaweb/sitecms/internal/listing"
)

// Linker builds public URLs for posts.
type Linker interface {
	Post(kind, slug, lang string) (string, error)
}

// View is a post resolved for one language, ready for a public page.
type View struct {
	ID                uuid.UUID          `json:"id"`
	Kind              Kind               `json:"kind"`
	Lang              string             `json:"lang"`
	Slug              string             `json:"slug"`
	Title             string             `json:"title"`
	Summary           string             `json:"summary,omitempty"`
	BodyHTML          string             `json:"body_html"`
	Category          string             `json:"category,omitempty"`
	ImageURL          string             `json:"image_url,omitempty"`
	VideoURL          string             `json:"video_url,omitempty"`
	VideoEmbedURL     string             `json:"video_embed_url,omitempty"`
	VideoThumbnailURL string             `json:"video_thumbnail_url,omitempty"`
	Gallery           []blocks.MediaItem `json:"gallery"`
	Permalink         string             `json:"permalink,omitempty"`
	Languages         []string           `json:"languages,omitempty"`
	Published         bool               `json:"published"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// Card is the list page projection of a post.
type Card struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Excerpt      string    `json:"excerpt"`
	Category     string    `json:"category,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Permalink    string    `json:"permalink,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DefaultExcerptLength bounds generated excerpts, in runes.
const DefaultExcerptLength = 180

// Presenter resolves records into views.
type Presenter struct {
	resolver i18n.Resolver
	renderer *blocks.Renderer
	links    Linker
	excerpt  int
}

// NewPresenter returns a presenter. links may be nil.
func NewPresenter(resolver i18n.Resolver, renderer *blocks.Renderer, links Linker) *Presenter {
	if renderer == nil {
		renderer = blocks.NewRenderer(nil)
	}
	return &Presenter{resolver: resolver, renderer: renderer, links: links, excerpt: DefaultExcerptLength}
}

// Resolver exposes the language fallback used by the presenter.
func (p *Presenter) Resolver() i18n.Resolver {
	return p.resolver
}

// View resolves rec for lang.
func (p *Presenter) View(kind Kind, rec *Record, lang string) View {
	lang = p.resolver.Lang(lang)
	view := View{
		ID:        rec.ID,
		Kind:      kind,
		Lang:      lang,
		Slug:      rec.Slug,
		Title:     p.resolver.TextOr(rec.TitleI18N, lang, rec.Title),
		Summary:   p.resolver.TextOr(rec.SummaryI18N, lang, rec.Summary),
		BodyHTML:  p.body(rec, lang),
		Category:  rec.Category,
		ImageURL:  rec.ImageURL,
		VideoURL:  rec.VideoURL,
		Gallery:   blocks.BuildGallery(rec.ImageURL, rec.VideoURL, rec.ContentBlocks),
		Permalink: p.permalink(kind, rec.Slug, lang),
		Languages: rec.TitleI18N.Languages(),
		Published: rec.Published,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if embed, thumb := blocks.YouTubeURLs(rec.VideoURL); embed != nil {
		view.VideoEmbedURL = *embed
		view.VideoThumbnailURL = *thumb
	}
	return view
}

// Card resolves the list projection of rec for lang.
func (p *Presenter) Card(kind Kind, rec *Record, lang string) Card {
	lang = p.resolver.Lang(lang)
	fields := p.fields(rec, lang)
	card := Card{
		ID:           rec.ID,
		Slug:         rec.Slug,
		Title:        fields.Title,
		Excerpt:      fields.Excerpt,
		Category:     rec.Category,
		ThumbnailURL: rec.ImageURL,
		Permalink:    p.permalink(kind, rec.Slug, lang),
		CreatedAt:    rec.CreatedAt,
	}
	if card.ThumbnailURL == "" {
		if _, thumb := blocks.YouTubeURLs(rec.VideoURL); thumb != nil {
			card.ThumbnailURL = *thumb
		}
	}
	return card
}

// Fields returns the listing extractor for lang: resolved title, summary or
// generated excerpt, and category.
func (p *Presenter) Fields(lang string) listing.Extractor[*Record] {
	lang = p.resolver.Lang(lang)
	return func(rec *Record) listing.Fields {
		return p.fields(rec, lang)
	}
}

func (p *Presenter) fields(rec *Record, lang string) listing.Fields {
	excerpt := p.resolver.TextOr(rec.SummaryI18N, lang, rec.Summary)
	if excerpt == "" {
		excerpt = blocks.ExcerptHTML(p.body(rec, lang), p.excerpt)
	}
	return listing.Fields{
		Title:    p.resolver.TextOr(rec.TitleI18N, lang, rec.Title),
		Excerpt:  excerpt,
		Category: rec.Category,
	}
}

func (p *Presenter) body(rec *Record, lang string) string {
	if lang != p.resolver.Lang("") {
		if translated, ok := rec.ContentI18N.Get(lang); ok {
			return translated
		}
	}
	if len(rec.ContentBlocks) > 0 {
		return p.renderer.Render(rec.ContentBlocks, rec.Content)
	}
	return rec.Body(p.resolver, lang)
}

func (p *Presenter) permalink(kind Kind, slug, lang string) string {
	if p.links == nil {
		return ""
	}
	link, err := p.links.Post(string(kind), slug, lang)
	if err != nil {
		return ""
	}
	return link
}
