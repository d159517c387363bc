// Package pipeline implements the per-post content transformations.
//
// This package handles the text stages between a parsed post and a page:
//   - Markdown to HTML fragment conversion via Goldmark
//   - Fenced code highlighting via chroma (class-based, hljs wrapper)
//   - ==mark== syntax and line ending normalization
//   - Relative .md link rewriting to rendered page URLs
//   - Template placeholder substitution ({{ title }}, {{ main }}, ...)
//
// Template loading lives in internal/assets and stylesheet compilation in
// internal/stylesheet. Writing pages is left to the root md2site package.
package pipeline
