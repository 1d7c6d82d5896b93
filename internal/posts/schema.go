package posts

import "strings"

// Schema describes what a content type supports, so blog and news share one
// admin service and one set of handlers.
type Schema struct {
	Kind  Kind
	Label string
	Table string
	// Bucket receives cover images and editor uploads.
	Bucket string
	// Blocks enables the content block editor.
	Blocks bool
	// Categories restricts the category field when non-empty.
	Categories []string
}

// BlogSchema describes the medical journal.
func BlogSchema(bucket string) Schema {
	return Schema{
		Kind:   KindBlog,
		Label:  "Blog post",
		Table:  "posts",
		Bucket: bucket,
		Blocks: false,
	}
}

// NewsSchema describes company news, authored with content blocks.
func NewsSchema(bucket string) Schema {
	return Schema{
		Kind:   KindNews,
		Label:  "News post",
		Table:  "company_news",
		Bucket: bucket,
		Blocks: true,
	}
}

// canonicalCategory returns the configured spelling of category. Free-form
// schemas accept any value.
func (s Schema) canonicalCategory(category string) (string, bool) {
	category = strings.TrimSpace(category)
	if category == "" || len(s.Categories) == 0 {
		return category, true
	}
	for _, allowed := range s.Categories {
		if strings.EqualFold(strings.TrimSpace(allowed), category) {
			return strings.TrimSpace(allowed), true
		}
	}
	return "", false
}
