package listing

import (
	"sort"
	"strings"
)

// Fields are the searchable attributes of one list item.
type Fields struct {
	Title    string
	Excerpt  string
	Category string
}

// Extractor returns the searchable fields of an item, usually already
// resolved for the viewer's language.
type Extractor[T any] func(T) Fields

// Options configure a Controller.
type Options struct {
	PageSize int
	// StrictCategory applies the category filter together with a search query.
	// By default an active query ignores the selected category.
	StrictCategory bool
}

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 12

// Controller derives the visible page of a fully loaded list from a search
// query, a category filter and a page number. It is not safe for concurrent
// use; build one per request.
type Controller[T any] struct {
	extract  Extractor[T]
	opts     Options
	query    string
	category string
	page     int
}

// New returns a controller positioned on page 1.
func New[T any](extract Extractor[T], opts Options) *Controller[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Controller[T]{extract: extract, opts: opts, page: 1}
}

// SetQuery sets the free-text query and resets to page 1.
func (c *Controller[T]) SetQuery(query string) {
	c.query = strings.TrimSpace(query)
	c.page = 1
}

// SetCategory selects a category ("" for none) and resets to page 1.
func (c *Controller[T]) SetCategory(category string) {
	c.category = strings.TrimSpace(category)
	c.page = 1
}

// SetPage requests a page. Out of range values are clamped by Apply.
func (c *Controller[T]) SetPage(page int) {
	c.page = page
}

func (c *Controller[T]) Query() string    { return c.query }
func (c *Controller[T]) Category() string { return c.category }
func (c *Controller[T]) Page() int        { return c.page }
func (c *Controller[T]) PageSize() int    { return c.opts.PageSize }

// Filter returns the items matching the current query and category.
func (c *Controller[T]) Filter(items []T) []T {
	query := strings.ToLower(c.query)
	out := make([]T, 0, len(items))
	for _, item := range items {
		fields := c.extract(item)
		switch {
		case query != "":
			if !matchesQuery(fields, query) {
				continue
			}
			if c.opts.StrictCategory && c.category != "" && !matchesCategory(fields, c.category) {
				continue
			}
		case c.category != "":
			if !matchesCategory(fields, c.category) {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

func matchesQuery(fields Fields, query string) bool {
	return strings.Contains(strings.ToLower(fields.Title), query) ||
		strings.Contains(strings.ToLower(fields.Excerpt), query) ||
		strings.Contains(strings.ToLower(fields.Category), query)
}

func matchesCategory(fields Fields, category string) bool {
	return strings.EqualFold(strings.TrimSpace(fields.Category), category)
}

// Apply filters items and slices out the current page, clamping the page
// number into [1, TotalPages]. The clamped number is kept on the controller.
func (c *Controller[T]) Apply(items []T) Page[T] {
	filtered := c.Filter(items)
	total := len(filtered)
	size := c.opts.PageSize
	totalPages := TotalPages(total, size)

	c.page = Clamp(c.page, totalPages)
	start := (c.page - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      filtered[start:end],
		Number:     c.page,
		PageSize:   size,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    c.page > 1,
		HasNext:    c.page < totalPages,
		Window:     Window(c.page, totalPages),
	}
}

// Categories returns the distinct non-blank categories of items, sorted
// case-insensitively. The first spelling seen wins.
func Categories[T any](items []T, extract Extractor[T]) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, item := range items {
		category := strings.TrimSpace(extract(item).Category)
		if category == "" {
			continue
		}
		key := strings.ToLower(category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
