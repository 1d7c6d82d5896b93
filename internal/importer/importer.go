// Package importer loads markdown files with front matter into blog posts and
// company news. Re-importing a file updates the record it created.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/internal/i18n"
	"github.com/pharmaweb/sitecms/internal/identity"
	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

var (
	ErrServiceRequired       = errors.New("importer: no post service for kind")
	ErrDefaultLocaleMissing  = errors.New("importer: default locale document is missing")
	ErrDirectoryRequired     = errors.New("importer: directory is required")
	ErrDuplicateLocaleSource = errors.New("importer: more than one file for the same locale")
)

// Action is what an import did, or would do in a dry run, for one post.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionFailed    Action = "failed"
)

// Options controls one import run.
type Options struct {
	Kind      posts.Kind
	DryRun    bool
	Pattern   string
	Recursive bool
}

// Outcome describes one imported post.
type Outcome struct {
	Slug   string
	ID     uuid.UUID
	Action Action
	Files  []string
	Err    error
}

// Result summarises an import run.
type Result struct {
	Kind     posts.Kind
	DryRun   bool
	Outcomes []Outcome
}

// Count returns how many outcomes have action.
func (r *Result) Count(action Action) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == action {
			n++
		}
	}
	return n
}

// Err joins every per-post failure.
func (r *Result) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Slug, o.Err))
		}
	}
	return errors.Join(errs...)
}

// Config wires the importer.
type Config struct {
	Services      map[posts.Kind]posts.Service
	DefaultLocale string
	Locales       []string
	Logger        interfaces.Logger
}

// Importer converts markdown documents into posts.
type Importer struct {
	services      map[posts.Kind]posts.Service
	defaultLocale string
	locales       []string
	renderer      *Renderer
	logger        interfaces.Logger
}

func New(cfg Config) *Importer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	def := i18n.NormalizeLocale(cfg.DefaultLocale)
	if def == "" {
		def = i18n.DefaultLocale
	}
	return &Importer{
		services:      maps.Clone(cfg.Services),
		defaultLocale: def,
		locales:       append([]string(nil), cfg.Locales...),
		renderer:      NewRenderer(),
		logger:        logger,
	}
}

// ImportDirectory imports the markdown files under dir.
func (im *Importer) ImportDirectory(ctx context.Context, dir string, opts Options) (*Result, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrDirectoryRequired
	}
	return im.ImportFS(ctx, os.DirFS(dir), opts)
}

// ImportFS imports the markdown files found in fsys. A failing post does not
// stop the run; its error is recorded in the result.
func (im *Importer) ImportFS(ctx context.Context, fsys fs.FS, opts Options) (*Result, error) {
	svc, ok := im.services[opts.Kind]
	if !ok || svc == nil {
		return nil, fmt.Errorf("%w: %q", ErrServiceRequired, opts.Kind)
	}

	loader := NewLoader(fsys, LoaderConfig{
		DefaultLocale: im.defaultLocale,
		Locales:       im.locales,
		Pattern:       opts.Pattern,
		Recursive:     opts.Recursive,
	})
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Kind: opts.Kind, DryRun: opts.DryRun}
	for _, group := range groupByStem(docs) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		outcome := im.importGroup(ctx, svc, group, opts)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	logging.WithFields(im.logger.WithContext(ctx), map[string]any{
		"kind":      string(opts.Kind),
		"dry_run":   opts.DryRun,
		"created":   result.Count(ActionCreated),
		"updated":   result.Count(ActionUpdated),
		"unchanged": result.Count(ActionUnchanged),
		"failed":    result.Count(ActionFailed),
	}).Info("importer.run.completed")
	return result, nil
}

func (im *Importer) importGroup(ctx context.Context, svc posts.Service, group []*Document, opts Options) Outcome {
	outcome := Outcome{Slug: group[0].Stem}
	for _, doc := range group {
		outcome.Files = append(outcome.Files, doc.Path)
	}
	fail := func(err error) Outcome {
		outcome.Action = ActionFailed
		outcome.Err = err
		im.logger.WithContext(ctx).Warn("importer.post.failed", "slug", outcome.Slug, "files", outcome.Files, "error", err)
		return outcome
	}

	input, err := im.buildInput(svc.Schema(), group)
	if err != nil {
		return fail(err)
	}
	outcome.Slug = input.Slug
	outcome.ID = input.ID

	existing, err := im.findExisting(ctx, svc, input.ID, input.Slug)
	if err != nil {
		return fail(err)
	}

	switch {
	case existing == nil:
		outcome.Action = ActionCreated
		if !opts.DryRun {
			if _, err := svc.Create(ctx, input); err != nil {
				return fail(err)
			}
		}
	case unchanged(existing, input, im.defaultLocale):
		outcome.ID = existing.ID
		outcome.Action = ActionUnchanged
	default:
		outcome.ID = existing.ID
		outcome.Action = ActionUpdated
		if !opts.DryRun {
			if _, err := svc.Update(ctx, existing.ID, input); err != nil {
				return fail(err)
			}
		}
	}
	im.logger.WithContext(ctx).Debug("importer.post."+string(outcome.Action), "slug", outcome.Slug, "dry_run", opts.DryRun)
	return outcome
}

// buildInput merges the locale variants of one post. The default locale file
// supplies the slug, category, media and flags.
func (im *Importer) buildInput(schema posts.Schema, group []*Document) (posts.SaveInput, error) {
	byLang := make(map[string]*Document, len(group))
	for _, doc := range group {
		if prev, dup := byLang[doc.Lang]; dup {
			return posts.SaveInput{}, fmt.Errorf("%w: %s and %s", ErrDuplicateLocaleSource, prev.Path, doc.Path)
		}
		byLang[doc.Lang] = doc
	}
	primary, ok := byLang[im.defaultLocale]
	if !ok {
		return posts.SaveInput{}, fmt.Errorf("%w: %s", ErrDefaultLocaleMissing, group[0].Stem)
	}

	meta := primary.FrontMatter
	slugValue := strings.TrimSpace(meta.Slug)
	if slugValue == "" {
		slugValue = path.Base(primary.Stem)
	}

	input := posts.SaveInput{
		ID:          identity.PostUUID(string(schema.Kind), slugValue),
		Slug:        slugValue,
		TitleI18N:   i18n.LocalizedText{},
		SummaryI18N: i18n.LocalizedText{},
		ContentI18N: i18n.LocalizedText{},
		Category:    strings.TrimSpace(meta.Category),
		Published:   meta.IsPublished(),
		ImageURL:    strings.TrimSpace(meta.Image),
		VideoURL:    strings.TrimSpace(meta.Video),
	}

	for lang, doc := range byLang {
		html, err := im.renderer.Render(doc.Body)
		if err != nil {
			return posts.SaveInput{}, fmt.Errorf("%s: %w", doc.Path, err)
		}
		input.TitleI18N = input.TitleI18N.With(lang, doc.FrontMatter.Title)
		input.SummaryI18N = input.SummaryI18N.With(lang, doc.FrontMatter.Summary)
		if lang == im.defaultLocale && schema.Blocks {
			if strings.TrimSpace(html) != "" {
				input.ContentBlocks = blocks.List{blocks.Text(strings.TrimSpace(html))}
			}
			continue
		}
		input.ContentI18N = input.ContentI18N.With(lang, html)
	}
	input.Title = input.TitleI18N[im.defaultLocale]
	input.Summary = input.SummaryI18N[im.defaultLocale]
	return input, nil
}

func (im *Importer) findExisting(ctx context.Context, svc posts.Service, id uuid.UUID, slugValue string) (*posts.Record, error) {
	rec, err := svc.Get(ctx, id)
	if err == nil {
		return rec, nil
	}
	if !posts.IsNotFound(err) {
		return nil, err
	}
	rec, err = svc.GetBySlug(ctx, slugValue)
	if err == nil {
		return rec, nil
	}
	if posts.IsNotFound(err) {
		return nil, nil
	}
	return nil, err
}

// unchanged compares the authored fields an import controls.
func unchanged(existing *posts.Record, input posts.SaveInput, defaultLocale string) bool {
	if existing.Category != input.Category ||
		existing.Published != input.Published ||
		existing.VideoURL != input.VideoURL {
		return false
	}
	// Covers uploaded in the admin are kept when the file names none.
	if input.ImageURL != "" && existing.ImageURL != input.ImageURL {
		return false
	}
	if !maps.Equal(existing.TitleI18N.Compact(), input.TitleI18N.Compact()) ||
		!maps.Equal(existing.SummaryI18N.Compact(), input.SummaryI18N.Compact()) {
		return false
	}
	if len(input.ContentBlocks) > 0 {
		if blocks.Compile(existing.ContentBlocks, "") != blocks.Compile(input.ContentBlocks, "") {
			return false
		}
		stored := existing.ContentI18N.Clone()
		delete(stored, defaultLocale)
		return maps.Equal(stored.Compact(), input.ContentI18N.Compact())
	}
	return maps.Equal(existing.ContentI18N.Compact(), input.ContentI18N.Compact())
}

func groupByStem(docs []*Document) [][]*Document {
	index := make(map[string][]*Document)
	for _, doc := range docs {
		index[doc.Stem] = append(index[doc.Stem], doc)
	}
	stems := make([]string, 0, len(index))
	for stem := range index {
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	out := make([][]*Document, 0, len(stems))
	for _, stem := range stems {
		out = append(out, index[stem])
	}
	return out
}
