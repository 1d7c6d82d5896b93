package listing

import (
	"fmt"
	"reflect"
	"testing"
)

type post struct {
	title    string
	summary  string
	category string
}

func fields(p post) Fields {
	return Fields{Title: p.title, Excerpt: p.summary, Category: p.category}
}

func numbered(n int) []post {
	out := make([]post, n)
	for i := range out {
		out[i] = post{title: fmt.Sprintf("Post %02d", i+1)}
	}
	return out
}

func TestApplyClampsPage(t *testing.T) {
	items := numbered(25)
	c := New(fields, Options{PageSize: 12})

	c.SetPage(0)
	page := c.Apply(items)
	if page.Number != 1 || page.TotalPages != 3 || len(page.Items) != 12 {
		t.Fatalf("expected page 1 of 3 with 12 items, got %+v", page)
	}

	c.SetPage(99)
	page = c.Apply(items)
	if page.Number != 3 || len(page.Items) != 1 || page.Items[0].title != "Post 25" {
		t.Fatalf("expected last page with one item, got number=%d items=%v", page.Number, page.Items)
	}
	if !page.HasPrev || page.HasNext {
		t.Fatalf("unexpected prev/next on last page: %+v", page)
	}
	if c.Page() != 3 {
		t.Fatalf("expected clamped page to be stored, got %d", c.Page())
	}
}

func TestApplyEmptyList(t *testing.T) {
	c := New(fields, Options{PageSize: 9})
	c.SetPage(4)
	page := c.Apply(nil)
	if page.Number != 1 || page.TotalPages != 1 || len(page.Items) != 0 || page.Window != nil {
		t.Fatalf("unexpected empty page %+v", page)
	}
}

func TestSearchMatchesAnyField(t *testing.T) {
	items := []post{
		{title: "Flu season", category: "Health"},
		{title: "Warehouse", summary: "New FLU vaccines arrived", category: "Logistics"},
		{title: "Expo", category: "Influenza"},
		{title: "Unrelated", category: "Event"},
	}
	c := New(fields, Options{})
	c.SetQuery("flu")
	got := c.Filter(items)
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %+v", got)
	}
}

func TestCategoryFilterIsExactCaseInsensitive(t *testing.T) {
	items := []post{
		{title: "a", category: "Event"},
		{title: "b", category: "event "},
		{title: "c", category: "Events"},
	}
	c := New(fields, Options{})
	c.SetCategory("EVENT")
	if got := c.Filter(items); len(got) != 2 {
		t.Fatalf("expected 2 matches, got %+v", got)
	}
}

func TestSearchOverridesCategory(t *testing.T) {
	items := []post{
		{title: "Pharma expo", category: "Event"},
		{title: "Expo recap", category: "News"},
		{title: "Board meeting", category: "Event"},
	}
	c := New(fields, Options{})
	c.SetCategory("Event")
	c.SetQuery("expo")

	search := New(fields, Options{})
	search.SetQuery("expo")

	if got, want := c.Filter(items), search.Filter(items); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected pure search result %+v, got %+v", want, got)
	}
}

func TestStrictCategoryCombinesPredicates(t *testing.T) {
	items := []post{
		{title: "Pharma expo", category: "Event"},
		{title: "Expo recap", category: "News"},
	}
	c := New(fields, Options{StrictCategory: true})
	c.SetCategory("Event")
	c.SetQuery("expo")
	got := c.Filter(items)
	if len(got) != 1 || got[0].title != "Pharma expo" {
		t.Fatalf("expected only the Event match, got %+v", got)
	}
}

func TestQueryAndCategoryResetPage(t *testing.T) {
	c := New(fields, Options{})
	c.SetPage(3)
	c.SetQuery("x")
	if c.Page() != 1 {
		t.Fatalf("SetQuery must reset page, got %d", c.Page())
	}
	c.SetPage(2)
	c.SetCategory("Event")
	if c.Page() != 1 {
		t.Fatalf("SetCategory must reset page, got %d", c.Page())
	}
}

func TestDefaultPageSize(t *testing.T) {
	if got := New(fields, Options{}).PageSize(); got != DefaultPageSize {
		t.Fatalf("expected default page size %d, got %d", DefaultPageSize, got)
	}
}

func TestCategories(t *testing.T) {
	items := []post{{category: "news"}, {category: "Event"}, {category: "News"}, {category: " "}}
	if got := Categories(items, fields); !reflect.DeepEqual(got, []string{"Event", "news"}) {
		t.Fatalf("unexpected categories %v", got)
	}
}
