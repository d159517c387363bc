package md2site

import (
	"log/slog"

	"github.com/alnah/go-md2site/internal/assets"
	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/stylesheet"
)

// Aliases for types of internal packages that appear in the public API.
type (
	// Mode selects stylesheet output: expanded with source maps, or compressed.
	Mode = stylesheet.Mode
	// RenderConfig configures markdown rendering.
	RenderConfig = pipeline.RenderConfig
	// Transpiler compiles a stylesheet source to CSS.
	Transpiler = stylesheet.Transpiler
	// TemplateLoader loads templates by name.
	TemplateLoader = assets.TemplateLoader
	// CompiledStylesheet is a stylesheet written during a build.
	CompiledStylesheet = stylesheet.Compiled
)

// Build modes.
const (
	ModeDevelopment = stylesheet.ModeDevelopment
	ModeProduction  = stylesheet.ModeProduction
)

// ParseMode accepts "development"/"dev" and "production"/"prod".
// Empty input yields ModeDevelopment.
func ParseMode(s string) (Mode, error) { return stylesheet.ParseMode(s) }

// Default paths, relative to the working directory.
const (
	DefaultPostsRoot    = "./posts"
	DefaultTemplateRoot = "./tmpl"
	DefaultOutputDir    = "./public"
)

// DefaultExtensions are the source file extensions built by default.
var DefaultExtensions = []string{".md", ".markdown"}

// Site configures the posts listing page and the RSS feed.
type Site struct {
	Title         string
	Description   string
	URL           string // absolute base URL; required by the feed
	Author        string
	IndexTemplate string // template for {out}/index.html; empty disables the listing
	Feed          bool   // write {out}/rss.xml
	DateFormat    string // dateutil format or preset for listing dates and the date placeholder
}

// Option configures a Builder.
type Option func(*Builder)

// WithPostsRoot sets the directory scanned for posts.
func WithPostsRoot(dir string) Option {
	return func(b *Builder) { b.postsRoot = dir }
}

// WithTemplateRoot sets the directory templates are loaded from.
// An empty root uses the built-in templates only.
func WithTemplateRoot(dir string) Option {
	return func(b *Builder) { b.templateRoot = dir }
}

// WithTemplateLoader replaces template loading entirely.
func WithTemplateLoader(loader TemplateLoader) Option {
	return func(b *Builder) { b.loader = loader }
}

// WithOutputDir sets the output root.
func WithOutputDir(dir string) Option {
	return func(b *Builder) { b.outputDir = dir }
}

// WithStyleRoot sets the directory stylesheet hrefs resolve against.
func WithStyleRoot(dir string) Option {
	return func(b *Builder) { b.styleRoot = dir }
}

// WithMode sets the build mode.
func WithMode(m Mode) Option {
	return func(b *Builder) { b.mode = m }
}

// WithLayout sets the output layout.
func WithLayout(l Layout) Option {
	return func(b *Builder) { b.layout = l }
}

// WithWorkers sets the number of concurrent workers. Zero sizes the pool
// automatically; one processes documents sequentially.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// WithFailFast stops the build at the first document failure.
func WithFailFast(enabled bool) Option {
	return func(b *Builder) { b.failFast = enabled }
}

// WithDrafts builds posts marked draft. They are still left out of the
// listing and the feed.
func WithDrafts(enabled bool) Option {
	return func(b *Builder) { b.drafts = enabled }
}

// WithStrictPlaceholders fails documents whose template keeps a metadata
// placeholder with no value.
func WithStrictPlaceholders(enabled bool) Option {
	return func(b *Builder) { b.strict = enabled }
}

// WithExtensions restricts discovery to files with the given extensions.
// No extensions means every regular file is a post.
func WithExtensions(exts ...string) Option {
	return func(b *Builder) { b.extensions = exts }
}

// WithRenderConfig sets the markdown rendering options.
func WithRenderConfig(cfg RenderConfig) Option {
	return func(b *Builder) { b.render = cfg }
}

// WithTranspiler replaces the Sass/SCSS transpiler.
func WithTranspiler(t Transpiler) Option {
	return func(b *Builder) { b.sass = t }
}

// WithSassBinary sets the Dart Sass executable used by the default transpiler.
func WithSassBinary(path string) Option {
	return func(b *Builder) { b.sassBinary = path }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithSite configures the listing page and the feed.
func WithSite(s Site) Option {
	return func(b *Builder) { b.site = s }
}
