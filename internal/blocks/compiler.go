package blocks

import (
	"html"
	"regexp"
	"strings"

	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// Compile renders list into display HTML, one block per line. An empty list
// yields fallback unchanged.
func Compile(list List, fallback string) string {
	if len(list) == 0 {
		return fallback
	}
	parts := make([]string, 0, len(list))
	for _, block := range list {
		parts = append(parts, renderBlock(block))
	}
	return strings.Join(parts, "\n")
}

func renderBlock(block Block) string {
	switch block.Kind {
	case KindImage:
		return renderImage(block)
	case KindVideo:
		return renderVideo(block)
	case KindText:
		// text blocks carry admin-authored HTML
		return block.Value
	default:
		return ""
	}
}

func renderImage(block Block) string {
	var b strings.Builder
	b.WriteString(`<figure><img src="`)
	b.WriteString(attr(block.Value))
	b.WriteString(`" alt="`)
	b.WriteString(attr(block.Caption))
	b.WriteString(`" />`)
	if block.Caption != "" {
		b.WriteString("<figcaption>")
		b.WriteString(html.EscapeString(block.Caption))
		b.WriteString("</figcaption>")
	}
	b.WriteString("</figure>")
	return b.String()
}

func renderVideo(block Block) string {
	var b strings.Builder
	if video, ok := ParseYouTube(block.Value); ok {
		b.WriteString(`<div class="video-embed"><iframe src="`)
		b.WriteString(attr(video.EmbedURL()))
		b.WriteString(`" title="YouTube video" frameborder="0" `)
		b.WriteString(`allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" `)
		b.WriteString(`allowfullscreen></iframe></div>`)
	} else {
		b.WriteString(`<video controls src="`)
		b.WriteString(attr(block.Value))
		b.WriteString(`"></video>`)
	}
	if block.Caption != "" {
		b.WriteString(`<p class="video-caption">`)
		b.WriteString(html.EscapeString(block.Caption))
		b.WriteString("</p>")
	}
	return b.String()
}

func attr(value string) string {
	return html.EscapeString(value)
}

// Renderer wraps Compile for the public views.
type Renderer struct {
	logger interfaces.Logger
}

// NewRenderer returns a renderer. A nil logger disables logging.
func NewRenderer(logger interfaces.Logger) *Renderer {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Renderer{logger: logger}
}

// Render compiles list, falling back to the authored HTML.
func (r *Renderer) Render(list List, fallback string) string {
	if len(list) == 0 {
		r.logger.Trace("blocks.render.fallback", "fallback_bytes", len(fallback))
		return fallback
	}
	out := Compile(list, fallback)
	r.logger.Trace("blocks.render", "blocks", len(list), "bytes", len(out))
	return out
}

// Excerpt renders list and reduces it to plain text of at most limit runes.
func (r *Renderer) Excerpt(list List, fallback string, limit int) string {
	return ExcerptHTML(r.Render(list, fallback), limit)
}

var (
	tagPattern        = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ExcerptHTML strips tags, collapses whitespace and truncates to limit runes,
// appending "..." when text was cut. Content before a <!--more--> marker is
// preferred. limit <= 0 disables truncation.
func ExcerptHTML(markup string, limit int) string {
	if idx := strings.Index(markup, "<!--more-->"); idx >= 0 {
		markup = markup[:idx]
	}
	text := tagPattern.ReplaceAllString(markup, " ")
	text = html.UnescapeString(text)
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
