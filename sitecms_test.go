package sitecms_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pharmaweb/sitecms"
)

const pressRelease = `---
title: New distribution centre
slug: distribution-centre
category: Company
---
We opened a **new** distribution centre.
`

func TestModuleImportAndServe(t *testing.T) {
	cfg := sitecms.DefaultConfig()
	cfg.Features.Logger = false
	module, err := sitecms.New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "distribution-centre.md"), []byte(pressRelease), 0o600); err != nil {
		t.Fatalf("write markdown: %v", err)
	}

	ctx := context.Background()
	dry, err := module.Import(ctx, sitecms.ImportRequest{Kind: sitecms.KindNews, Directory: dir, DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if dry.Count("created") != 1 {
		t.Fatalf("expected dry run to plan one create, got %+v", dry.Outcomes)
	}
	if page, err := module.News().List(ctx, sitecms.ListOptions{}); err != nil || len(page) != 0 {
		t.Fatalf("expected dry run to write nothing, got %d err=%v", len(page), err)
	}

	result, err := module.Import(ctx, sitecms.ImportRequest{Kind: sitecms.KindNews, Directory: dir})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Count("created") != 1 {
		t.Fatalf("expected one created post, got %+v", result.Outcomes)
	}

	rec := httptest.NewRecorder()
	module.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/news/distribution-centre", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
	var view struct {
		Title    string `json:"title"`
		BodyHTML string `json:"body_html"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Title != "New distribution centre" || view.BodyHTML == "" {
		t.Fatalf("unexpected view %+v", view)
	}

	again, err := module.Import(ctx, sitecms.ImportRequest{Kind: sitecms.KindNews, Directory: dir})
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if again.Count("unchanged") != 1 {
		t.Fatalf("expected re-import to be idempotent, got %+v", again.Outcomes)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := sitecms.DefaultConfig()
	cfg.Media.Provider = "s3"
	if _, err := sitecms.New(cfg); err == nil {
		t.Fatalf("expected invalid media provider to fail")
	}
}
