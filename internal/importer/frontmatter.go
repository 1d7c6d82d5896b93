package importer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block of an imported markdown file.
type FrontMatter struct {
	Title     string    `yaml:"title"`
	Slug      string    `yaml:"slug"`
	Summary   string    `yaml:"summary"`
	Category  string    `yaml:"category"`
	Lang      string    `yaml:"lang"`
	Image     string    `yaml:"image"`
	Video     string    `yaml:"video"`
	Date      time.Time `yaml:"date"`
	Draft     bool      `yaml:"draft"`
	Published *bool     `yaml:"published"`
}

// IsPublished resolves the published flag: an explicit value wins over draft.
func (f FrontMatter) IsPublished() bool {
	if f.Published != nil {
		return *f.Published
	}
	return !f.Draft
}

// ParseFrontMatter splits source into metadata and the markdown body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, body, nil
}
