// Package md2site builds a static site from a directory of markdown posts.
//
// # Quick Start
//
//	b, err := md2site.NewBuilder(
//	    md2site.WithPostsRoot("./posts"),
//	    md2site.WithTemplateRoot("./tmpl"),
//	    md2site.WithOutputDir("./public"),
//	    md2site.WithMode(md2site.ModeProduction),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := b.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d written, %d failed\n", report.Written(), report.Failed())
//
// # Posts
//
// Every file under the posts root with a markdown extension is a post. A post
// starts with a YAML frontmatter block:
//
//	---
//	title: Hello
//	description: First post
//	template: _base.html
//	pubDate: 2024-02-01
//	tags: [go, web]
//	---
//	# Hi
//
// title, description and template are required. draft: true posts are
// skipped unless WithDrafts is set, and never appear in the listing or feed.
//
// # Build Pipeline
//
// Each post goes through these stages:
//
//  1. Frontmatter parsing and validation
//  2. Template loading from the template root (built-in _base.html and
//     _index.html are used when the root lacks them)
//  3. Metadata substitution: {{ title }}, {{ description }}, {{ author }},
//     {{ date }}, {{ tags }}, {{ canonical }}, {{ slug }} and any extra
//     frontmatter scalar
//  4. Stylesheet compilation: the template's <link type="text/sass"> source
//     is compiled with Dart Sass to {out}/css/{name}.css and the link is
//     rewritten to it
//  5. Markdown rendering via Goldmark (GFM, footnotes, chroma highlighting)
//  6. Body substitution of the first {{ main }}
//  7. Atomic write to {out}/{name}/index.html, or {out}/{name}.html with
//     LayoutFlat
//
// # Errors
//
// Document failures are collected in the Report as *DocumentError values
// carrying the path and Stage. Classify them with errors.Is against
// ErrInvalidFrontmatter, ErrTemplateNotFound, ErrOutputCollision and the
// other sentinels in this package. Stylesheet failures never fail a page;
// they are reported as warnings.
package md2site
