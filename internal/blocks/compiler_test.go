package blocks

import (
	"strings"
	"testing"
)

func TestCompileIsDeterministic(t *testing.T) {
	list := List{
		Text("<p>Intro</p>"),
		Image("https://cdn.example.com/a.png", "Lab"),
		Video("https://youtu.be/dQw4w9WgXcQ", "Talk"),
		Video("https://example.com/clip.mp4", ""),
	}
	first := Compile(list, "ignored")
	second := Compile(list, "ignored")
	if first != second {
		t.Fatalf("expected identical output, got\n%s\n---\n%s", first, second)
	}
	if got := len(strings.Split(first, "\n")); got != len(list) {
		t.Fatalf("expected %d lines, got %d", len(list), got)
	}
}

func TestCompileEmptyReturnsFallback(t *testing.T) {
	for _, list := range []List{nil, {}} {
		if got := Compile(list, "<p>legacy</p>"); got != "<p>legacy</p>" {
			t.Fatalf("expected fallback, got %q", got)
		}
	}
	if got := Compile(nil, ""); got != "" {
		t.Fatalf("expected empty fallback to pass through, got %q", got)
	}
}

func TestCompileBlocks(t *testing.T) {
	cases := []struct {
		name  string
		block Block
		want  string
	}{
		{
			name:  "text verbatim",
			block: Text(`<p class="lead">Hi & welcome</p>`),
			want:  `<p class="lead">Hi & welcome</p>`,
		},
		{
			name:  "image with caption",
			block: Image("https://cdn.example.com/a.png", `Lab "A"`),
			want:  `<figure><img src="https://cdn.example.com/a.png" alt="Lab &#34;A&#34;" /><figcaption>Lab &#34;A&#34;</figcaption></figure>`,
		},
		{
			name:  "image without caption",
			block: Image("https://cdn.example.com/a.png?x=1&y=2", ""),
			want:  `<figure><img src="https://cdn.example.com/a.png?x=1&amp;y=2" alt="" /></figure>`,
		},
		{
			name:  "native video",
			block: Video("https://example.com/video.mp4", ""),
			want:  `<video controls src="https://example.com/video.mp4"></video>`,
		},
		{
			name:  "native video with caption",
			block: Video("https://example.com/video.mp4", "Demo"),
			want:  `<video controls src="https://example.com/video.mp4"></video><p class="video-caption">Demo</p>`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compile(List{tc.block}, ""); got != tc.want {
				t.Fatalf("expected\n%s\ngot\n%s", tc.want, got)
			}
		})
	}
}

func TestCompileDropsUnknownKinds(t *testing.T) {
	list := List{Text("<p>Kept</p>"), {Kind: "audio", Value: "<script>alert(1)</script>"}}
	got := Compile(list, "")
	if strings.Contains(got, "<script>") {
		t.Fatalf("expected unknown kind to render nothing, got %q", got)
	}
	if !strings.HasPrefix(got, "<p>Kept</p>") {
		t.Fatalf("expected text block to survive, got %q", got)
	}
	if only := Compile(List{{Kind: "audio", Value: "x.mp3"}}, "fallback"); only != "" {
		t.Fatalf("expected empty output for unknown kind, got %q", only)
	}
}

func TestCompileYouTubeVideo(t *testing.T) {
	got := Compile(List{Video("https://www.youtube.com/watch?v=dQw4w9WgXcQ", "Keynote")}, "")
	if !strings.HasPrefix(got, `<div class="video-embed"><iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ?rel=0&amp;modestbranding=1"`) {
		t.Fatalf("unexpected embed markup: %s", got)
	}
	if !strings.Contains(got, "allowfullscreen></iframe></div>") {
		t.Fatalf("expected iframe to allow fullscreen: %s", got)
	}
	if !strings.HasSuffix(got, `<p class="video-caption">Keynote</p>`) {
		t.Fatalf("expected caption paragraph: %s", got)
	}
	if strings.Contains(got, "<video") {
		t.Fatalf("youtube links must not render a native video tag: %s", got)
	}
}

func TestExcerptHTML(t *testing.T) {
	markup := "<h2>Flu   season</h2>\n<p>Vaccines &amp; you</p><!--more--><p>hidden</p>"
	if got := ExcerptHTML(markup, 0); got != "Flu season Vaccines & you" {
		t.Fatalf("unexpected excerpt %q", got)
	}
	if got := ExcerptHTML("<p>Привет мир</p>", 6); got != "Привет..." {
		t.Fatalf("unexpected truncated excerpt %q", got)
	}
}

func TestRendererExcerptUsesFallback(t *testing.T) {
	r := NewRenderer(nil)
	if got := r.Excerpt(nil, "<p>Legacy body</p>", 100); got != "Legacy body" {
		t.Fatalf("unexpected excerpt %q", got)
	}
	if got := r.Render(List{Text("<p>x</p>")}, "fallback"); got != "<p>x</p>" {
		t.Fatalf("unexpected render %q", got)
	}
}
