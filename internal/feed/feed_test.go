package feed

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dirHref(slug string) string { return slug + "/" }

// ---------------------------------------------------------------------------
// TestSort - Newest first, slug tiebreak, undated last
// ---------------------------------------------------------------------------

func TestSort(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Slug: "undated"},
		{Slug: "b", Date: day(2024, 1, 1)},
		{Slug: "a", Date: day(2024, 1, 1)},
		{Slug: "newest", Date: day(2024, 6, 1)},
	}
	Sort(entries)

	want := []string{"newest", "a", "b", "undated"}
	for i, e := range entries {
		if e.Slug != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, e.Slug, want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// TestRenderList - Listing markup
// ---------------------------------------------------------------------------

func TestRenderList(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Slug: "hello", Title: "Hello <World>", Description: "First & best", Date: day(2024, 3, 5)},
		{Slug: "undated", Title: "Undated"},
	}

	got, err := RenderList(entries, dirHref, "long")
	if err != nil {
		t.Fatalf("RenderList() error = %v", err)
	}

	for _, want := range []string{
		`<ul class="posts">`,
		`<li><a href="hello/">Hello &lt;World&gt;</a> <time datetime="2024-03-05">March 5, 2024</time><p>First &amp; best</p></li>`,
		`<li><a href="undated/">Undated</a></li>`,
		"</ul>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderList() = %q, want %q", got, want)
		}
	}

	if _, err := RenderList(entries, dirHref, "[unclosed"); err == nil {
		t.Error("RenderList() with invalid date format error = nil, want error")
	}
}

func TestRenderList_Empty(t *testing.T) {
	t.Parallel()

	got, err := RenderList(nil, dirHref, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "<ul class=\"posts\">\n</ul>\n" {
		t.Errorf("RenderList(nil) = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestRSS - Feed content and determinism
// ---------------------------------------------------------------------------

func TestRSS(t *testing.T) {
	t.Parallel()

	site := Site{Title: "Blog", Description: "Notes", URL: "https://example.com/", Author: "Ada"}
	entries := []Entry{
		{Slug: "newer", Title: "Newer", Description: "n", Date: day(2024, 2, 1)},
		{Slug: "older", Title: "Older", Description: "o", Date: day(2023, 1, 1), Author: "Bob"},
	}

	got, err := RSS(site, entries, dirHref)
	if err != nil {
		t.Fatalf("RSS() error = %v", err)
	}
	for _, want := range []string{
		`<rss version="2.0"`,
		"<title>Blog</title>",
		"<link>https://example.com/</link>",
		"<link>https://example.com/newer/</link>",
		"<title>Older</title>",
		"Thu, 01 Feb 2024 00:00:00 +0000",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RSS() missing %q in:\n%s", want, got)
		}
	}
	if strings.Index(got, "Newer") > strings.Index(got, "Older") {
		t.Error("RSS() items out of order")
	}

	again, err := RSS(site, entries, dirHref)
	if err != nil {
		t.Fatal(err)
	}
	if again != got {
		t.Error("RSS() not deterministic")
	}
}

func TestRSS_MissingURL(t *testing.T) {
	t.Parallel()

	_, err := RSS(Site{Title: "x"}, nil, dirHref)
	if !errors.Is(err, ErrMissingSiteURL) {
		t.Errorf("RSS() error = %v, want ErrMissingSiteURL", err)
	}
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	tests := []struct{ base, path, want string }{
		{"https://example.com", "hello/", "https://example.com/hello/"},
		{"https://example.com/", "/hello/", "https://example.com/hello/"},
		{"https://example.com/blog", "", "https://example.com/blog/"},
	}
	for _, tt := range tests {
		if got := PageURL(tt.base, tt.path); got != tt.want {
			t.Errorf("PageURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
