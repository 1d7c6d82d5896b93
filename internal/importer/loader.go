package importer

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/pharmaweb/sitecms/internal/i18n"
)

// Document is one parsed markdown file.
type Document struct {
	Path        string
	Stem        string
	Lang        string
	FrontMatter FrontMatter
	Body        []byte
	Modified    time.Time
}

// LoaderConfig controls discovery and locale detection.
type LoaderConfig struct {
	DefaultLocale string
	Locales       []string
	// Pattern filters file names; defaults to *.md.
	Pattern   string
	Recursive bool
}

// Loader discovers markdown documents in an fs.FS.
type Loader struct {
	fs            fs.FS
	defaultLocale string
	locales       []string
	pattern       string
	recursive     bool
}

func NewLoader(fsys fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	def := i18n.NormalizeLocale(cfg.DefaultLocale)
	if def == "" {
		def = i18n.DefaultLocale
	}
	locales := cfg.Locales
	if len(locales) == 0 {
		locales = i18n.SupportedLocales()
	}
	return &Loader{
		fs:            fsys,
		defaultLocale: def,
		locales:       append([]string(nil), locales...),
		pattern:       pattern,
		recursive:     cfg.Recursive,
	}
}

// Load walks the root of the filesystem and parses every matching file,
// sorted by path. Top-level locale directories hold translations of root
// documents and are read even when the loader is not recursive.
func (l *Loader) Load(ctx context.Context) ([]*Document, error) {
	var docs []*Document
	err := fs.WalkDir(l.fs, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p == "." || l.recursive || l.localeDir(p) {
				return nil
			}
			return fs.SkipDir
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if ok, _ := path.Match(l.pattern, path.Base(p)); !ok {
			return nil
		}
		doc, err := l.LoadFile(p)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// LoadFile parses one file. The locale comes from a name.<lang>.md suffix,
// then the lang front matter key, then a leading locale directory, and
// finally the default locale.
func (l *Loader) LoadFile(p string) (*Document, error) {
	source, err := fs.ReadFile(l.fs, p)
	if err != nil {
		return nil, fmt.Errorf("importer read %s: %w", p, err)
	}
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("importer %s: %w", p, err)
	}
	var modified time.Time
	if info, err := fs.Stat(l.fs, p); err == nil {
		modified = info.ModTime()
	}

	stem, lang := l.locate(p, meta)

	return &Document{
		Path:        p,
		Stem:        stem,
		Lang:        lang,
		FrontMatter: meta,
		Body:        body,
		Modified:    modified,
	}, nil
}

// locate derives the grouping stem and locale of the file at p.
func (l *Loader) locate(p string, meta FrontMatter) (string, string) {
	dir := path.Dir(p)
	name := strings.TrimSuffix(path.Base(p), path.Ext(p))
	lang := ""
	if idx := strings.LastIndex(name, "."); idx > 0 {
		if candidate := i18n.NormalizeLocale(name[idx+1:]); l.known(candidate) {
			lang = candidate
			name = name[:idx]
		}
	}
	if lang == "" {
		if candidate := i18n.NormalizeLocale(meta.Lang); l.known(candidate) {
			lang = candidate
		}
	}
	if dir != "." {
		first, rest, _ := strings.Cut(dir, "/")
		if candidate := i18n.NormalizeLocale(first); l.known(candidate) {
			if lang == "" {
				lang = candidate
			}
			dir = rest
			if dir == "" {
				dir = "."
			}
		}
	}
	if lang == "" {
		lang = l.defaultLocale
	}
	return path.Join(dir, name), lang
}

func (l *Loader) localeDir(p string) bool {
	return path.Dir(p) == "." && l.known(i18n.NormalizeLocale(p))
}

func (l *Loader) known(code string) bool {
	return code != "" && i18n.IsSupported(code, l.locales...)
}
