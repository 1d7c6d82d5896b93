package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pharmaweb/sitecms/internal/identity"
	"github.com/pharmaweb/sitecms/internal/importer"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/pkg/testsupport"
)

const openDay = `---
title: Open day
slug: open-day
summary: Visit our warehouse
category: Event
image: https://cdn.example.com/open-day.png
---
# Doors open

Come **early**.
`

const openDayUz = `---
title: Ochiq eshiklar kuni
---
Erta keling.
`

const fluSeason = `---
title: Flu season
draft: true
---
Wash your hands.
`

func newImporter() (*importer.Importer, map[posts.Kind]posts.Service) {
	services := map[posts.Kind]posts.Service{
		posts.KindNews: posts.NewService(posts.NewsSchema("news-images"), posts.NewMemoryRepository("news_post")),
		posts.KindBlog: posts.NewService(posts.BlogSchema("blog-images"), posts.NewMemoryRepository("blog_post")),
	}
	return importer.New(importer.Config{Services: services, DefaultLocale: "en"}), services
}

func TestImportNewsWithTranslations(t *testing.T) {
	ctx := context.Background()
	im, services := newImporter()
	fsys := fstest.MapFS{
		"open-day.md":    {Data: []byte(openDay)},
		"open-day.uz.md": {Data: []byte(openDayUz)},
		"notes.txt":      {Data: []byte("ignored")},
	}

	result, err := im.ImportFS(ctx, fsys, importer.Options{Kind: posts.KindNews})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Count(importer.ActionCreated) != 1 || result.Err() != nil {
		t.Fatalf("expected one created post, got %+v", result.Outcomes)
	}

	rec, err := services[posts.KindNews].GetBySlug(ctx, "open-day")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ID != identity.PostUUID("news", "open-day") {
		t.Fatalf("expected deterministic id, got %s", rec.ID)
	}
	if len(rec.ContentBlocks) != 1 || !strings.Contains(rec.ContentBlocks[0].Value, "<strong>early</strong>") {
		t.Fatalf("expected rendered markdown in a text block, got %+v", rec.ContentBlocks)
	}
	if !strings.Contains(rec.ContentBlocks[0].Value, `<h1 id="doors-open">`) {
		t.Fatalf("expected heading ids, got %q", rec.ContentBlocks[0].Value)
	}
	if rec.TitleI18N["uz"] != "Ochiq eshiklar kuni" || !strings.Contains(rec.ContentI18N["uz"], "Erta keling.") {
		t.Fatalf("expected uzbek variant to be merged, got %v / %v", rec.TitleI18N, rec.ContentI18N)
	}
	if !rec.Published || rec.Category != "Event" || rec.ImageURL != "https://cdn.example.com/open-day.png" {
		t.Fatalf("unexpected front matter mapping %+v", rec)
	}

	again, err := im.ImportFS(ctx, fsys, importer.Options{Kind: posts.KindNews})
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if again.Count(importer.ActionUnchanged) != 1 {
		t.Fatalf("expected re-import to be a no-op, got %+v", again.Outcomes)
	}

	fsys["open-day.md"] = &fstest.MapFile{Data: []byte(strings.Replace(openDay, "Come **early**.", "Come on time.", 1))}
	changed, err := im.ImportFS(ctx, fsys, importer.Options{Kind: posts.KindNews})
	if err != nil {
		t.Fatalf("changed import: %v", err)
	}
	if changed.Count(importer.ActionUpdated) != 1 {
		t.Fatalf("expected update, got %+v", changed.Outcomes)
	}
	list, _ := services[posts.KindNews].List(ctx, posts.ListOptions{})
	if len(list) != 1 {
		t.Fatalf("expected re-import not to duplicate, got %d posts", len(list))
	}
}

func TestImportBlogDryRun(t *testing.T) {
	ctx := context.Background()
	im, services := newImporter()
	dir := testsupport.WriteFiles(t, map[string]string{
		"flu-season.md":            fluSeason,
		"archive/old-post.md":      "---\ntitle: Old\n---\nOld body\n",
		"ru/flu-season.md":         "---\ntitle: Сезон гриппа\n---\nМойте руки.\n",
		"orphan-translation.de.md": "---\ntitle: Nur Deutsch\n---\nText\n",
	})

	result, err := im.ImportDirectory(ctx, dir, importer.Options{Kind: posts.KindBlog, DryRun: true, Recursive: true})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Count(importer.ActionCreated) != 2 {
		t.Fatalf("expected two planned creations, got %+v", result.Outcomes)
	}
	if result.Count(importer.ActionFailed) != 1 || !errors.Is(result.Err(), importer.ErrDefaultLocaleMissing) {
		t.Fatalf("expected orphan translation to fail, got %v", result.Err())
	}
	if list, _ := services[posts.KindBlog].List(ctx, posts.ListOptions{}); len(list) != 0 {
		t.Fatalf("dry run must not persist, got %d posts", len(list))
	}

	result, err = im.ImportDirectory(ctx, dir, importer.Options{Kind: posts.KindBlog})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	rec, err := services[posts.KindBlog].GetBySlug(ctx, "flu-season")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Published {
		t.Fatalf("expected draft to stay unpublished")
	}
	if rec.TitleI18N["ru"] != "Сезон гриппа" || rec.ContentBlocks != nil {
		t.Fatalf("expected russian directory variant and no blocks for blog, got %+v", rec)
	}
}

func TestImportRejectsUnknownKind(t *testing.T) {
	im := importer.New(importer.Config{})
	if _, err := im.ImportFS(context.Background(), fstest.MapFS{}, importer.Options{Kind: posts.KindBlog}); !errors.Is(err, importer.ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}
	if _, err := im.ImportDirectory(context.Background(), " ", importer.Options{Kind: posts.KindBlog}); !errors.Is(err, importer.ErrDirectoryRequired) {
		t.Fatalf("expected ErrDirectoryRequired, got %v", err)
	}
}
