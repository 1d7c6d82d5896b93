package importer

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
)

func TestParseFrontMatter(t *testing.T) {
	meta, body, err := ParseFrontMatter([]byte("---\ntitle: Hello\npublished: false\ndraft: false\n---\nBody\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Title != "Hello" || strings.TrimSpace(string(body)) != "Body" {
		t.Fatalf("unexpected parse result %+v %q", meta, body)
	}
	if meta.IsPublished() {
		t.Fatalf("explicit published: false must win over draft")
	}

	meta, _, err = ParseFrontMatter([]byte("No front matter at all\n"))
	if err != nil {
		t.Fatalf("plain markdown must parse: %v", err)
	}
	if !meta.IsPublished() {
		t.Fatalf("documents without flags are published")
	}
}

func TestLoaderDetectsLocale(t *testing.T) {
	loader := NewLoader(nil, LoaderConfig{DefaultLocale: "en"})
	cases := []struct {
		path, stem, lang string
	}{
		{"post.md", "post", "en"},
		{"post.uz.md", "post", "uz"},
		{"de/post.md", "post", "de"},
		{"2025/post.v2.md", "2025/post.v2", "en"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			stem, lang := loader.locate(tc.path, FrontMatter{})
			if stem != tc.stem || lang != tc.lang {
				t.Fatalf("expected %s/%s, got %s/%s", tc.stem, tc.lang, stem, lang)
			}
		})
	}
}

func TestLoaderReadsLocaleDirectoriesWithoutRecursion(t *testing.T) {
	fsys := fstest.MapFS{
		"post.md":            {Data: []byte("---\ntitle: Post\n---\nBody\n")},
		"ru/post.md":         {Data: []byte("---\ntitle: Пост\n---\nТекст\n")},
		"ru/archive/old.md":  {Data: []byte("---\ntitle: Old\n---\nOld\n")},
		"archive/old.md":     {Data: []byte("---\ntitle: Old\n---\nOld\n")},
		"archive/ru/post.md": {Data: []byte("---\ntitle: Nested\n---\nNested\n")},
	}
	docs, err := NewLoader(fsys, LoaderConfig{DefaultLocale: "en"}).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var got []string
	for _, doc := range docs {
		got = append(got, doc.Path+"="+doc.Stem+"/"+doc.Lang)
	}
	want := "post.md=post/en ru/post.md=post/ru"
	if strings.Join(got, " ") != want {
		t.Fatalf("expected %q, got %q", want, strings.Join(got, " "))
	}

	docs, err = NewLoader(fsys, LoaderConfig{DefaultLocale: "en", Recursive: true}).Load(context.Background())
	if err != nil {
		t.Fatalf("recursive load: %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("expected every document when recursive, got %d", len(docs))
	}
}
