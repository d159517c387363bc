// Package feed builds the posts listing and the RSS feed from the posts
// of a build.
package feed

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/alnah/go-md2site/internal/dateutil"
)

// ErrMissingSiteURL indicates a feed was requested without an absolute site URL.
var ErrMissingSiteURL = errors.New("site URL is required for the feed")

// Entry is one published post.
type Entry struct {
	Slug        string
	Title       string
	Description string
	Author      string
	Tags        []string
	Date        time.Time // zero when the post has no date
}

// Site describes the site as a whole.
type Site struct {
	Title       string
	Description string
	URL         string // absolute base URL, e.g. https://example.com
	Author      string
}

// Sort orders entries newest first; undated entries go last. Ties break
// on slug so the order never depends on discovery order.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Slug < b.Slug
	})
}

// RenderList renders entries as <ul class="posts">. href maps a slug to the
// link target; dateFormat follows dateutil.FormatDate.
func RenderList(entries []Entry, href func(slug string) string, dateFormat string) (string, error) {
	var b strings.Builder
	b.WriteString("<ul class=\"posts\">\n")
	for _, e := range entries {
		b.WriteString(`<li><a href="`)
		b.WriteString(html.EscapeString(href(e.Slug)))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(e.Title))
		b.WriteString("</a>")
		if !e.Date.IsZero() {
			shown, err := dateutil.FormatDate(e.Date, dateFormat)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, ` <time datetime="%s">%s</time>`, e.Date.Format("2006-01-02"), html.EscapeString(shown))
		}
		if e.Description != "" {
			b.WriteString("<p>")
			b.WriteString(html.EscapeString(e.Description))
			b.WriteString("</p>")
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n")
	return b.String(), nil
}

// PageURL joins the site URL and a page path.
func PageURL(siteURL, path string) string {
	return strings.TrimRight(siteURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// RSS renders an RSS 2.0 feed. path maps a slug to the page path relative
// to the site root. Timestamps come only from post dates, so unchanged
// posts yield a byte-identical feed.
func RSS(site Site, entries []Entry, path func(slug string) string) (string, error) {
	if site.URL == "" {
		return "", ErrMissingSiteURL
	}

	f := &feeds.Feed{
		Title:       site.Title,
		Link:        &feeds.Link{Href: PageURL(site.URL, "")},
		Description: site.Description,
	}
	if site.Author != "" {
		f.Author = &feeds.Author{Name: site.Author}
	}

	for _, e := range entries {
		link := PageURL(site.URL, path(e.Slug))
		item := &feeds.Item{
			Id:          link,
			Title:       e.Title,
			Link:        &feeds.Link{Href: link},
			Description: e.Description,
			Created:     e.Date,
		}
		if e.Author != "" {
			item.Author = &feeds.Author{Name: e.Author}
		}
		if e.Date.After(f.Created) {
			f.Created = e.Date
		}
		f.Items = append(f.Items, item)
	}

	out, err := f.ToRss()
	if err != nil {
		return "", fmt.Errorf("rendering rss: %w", err)
	}
	return out, nil
}
