// Package stylesheet compiles the Sass/SCSS stylesheet a template links to
// and rewrites the link to the compiled CSS.
package stylesheet

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// CSSDir is the output sub-directory for compiled stylesheets.
const CSSDir = "css"

// Compiled is a stylesheet written to disk during a build.
type Compiled struct {
	Source     string // absolute source path
	OutputPath string // absolute CSS path
	CSS        string
	SourceMap  string // empty in production
}

// Config configures a Compiler.
type Config struct {
	StyleRoot string // base for resolving link hrefs; defaults to "."
	OutputDir string // CSS is written under {OutputDir}/css
	Mode      Mode
	Sass       Transpiler // .scss/.sass; defaults to a DartSass owned by the Compiler
	SassBinary string     // executable for the default DartSass
	CSS       Transpiler // .css; defaults to NewPlainCSS()
	Logger    *slog.Logger
}

type memoEntry struct {
	compiled Compiled
	err      error
}

// Compiler compiles each stylesheet at most once per build, no matter how
// many pages reference it. Safe for concurrent use.
type Compiler struct {
	styleRoot string
	outputDir string
	mode      Mode
	sass      Transpiler
	css       Transpiler
	ownsSass  bool
	logger    *slog.Logger

	group singleflight.Group
	mu    sync.Mutex
	memo  map[string]memoEntry // keyed by output path
}

// NewCompiler creates a Compiler from cfg.
func NewCompiler(cfg Config) (*Compiler, error) {
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("%w: output directory is required", ErrCompilation)
	}
	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory: %w", err)
	}
	styleRoot := cfg.StyleRoot
	if styleRoot == "" {
		styleRoot = "."
	}
	styleRoot, err = filepath.Abs(styleRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving style root: %w", err)
	}
	mode := cfg.Mode
	if mode == "" {
		mode = DefaultMode
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sass, ownsSass := cfg.Sass, false
	if sass == nil {
		sass, ownsSass = NewDartSass(WithBinary(cfg.SassBinary), WithLogger(logger)), true
	}
	plain := cfg.CSS
	if plain == nil {
		plain = NewPlainCSS()
	}

	return &Compiler{
		styleRoot: styleRoot,
		outputDir: outputDir,
		mode:      mode,
		sass:      sass,
		css:       plain,
		ownsSass:  ownsSass,
		logger:    logger,
		memo:      make(map[string]memoEntry),
	}, nil
}

// Mode returns the compiler's build mode.
func (c *Compiler) Mode() Mode { return c.mode }

// Process finds the preprocessor link in tmpl, compiles its stylesheet, and
// returns tmpl with that link pointing at the compiled CSS relative to
// pageDir (the directory the page will be written to).
//
// Templates without a preprocessor link are returned unchanged with a nil
// Compiled. On any error the unmodified template is returned alongside it.
func (c *Compiler) Process(ctx context.Context, tmpl, pageDir string) (string, *Compiled, error) {
	links, err := FindLinks(tmpl)
	if err != nil {
		return tmpl, nil, fmt.Errorf("%w: scanning template: %w", ErrCompilation, err)
	}
	switch len(links) {
	case 0:
		return tmpl, nil, nil
	case 1:
	default:
		return tmpl, nil, fmt.Errorf("%w: %w: found %d", ErrCompilation, ErrMultipleStylesheets, len(links))
	}

	link := links[0]
	source, err := c.ResolveSource(link.Href)
	if err != nil {
		return tmpl, nil, err
	}
	compiled, err := c.Compile(ctx, source)
	if err != nil {
		return tmpl, nil, err
	}

	absPageDir, err := filepath.Abs(pageDir)
	if err != nil {
		return tmpl, nil, fmt.Errorf("resolving page directory: %w", err)
	}
	href, err := fileutil.RelativeURL(absPageDir, compiled.OutputPath)
	if err != nil {
		return tmpl, nil, fmt.Errorf("%w: relative href: %w", ErrCompilation, err)
	}
	return RewriteLink(tmpl, link, href), &compiled, nil
}

// ResolveSource maps a link href to an absolute path under the style root.
// Root-relative hrefs ("/sass/main.scss") are taken relative to the style
// root too. Remote hrefs and paths escaping the root are rejected.
func (c *Compiler) ResolveSource(href string) (string, error) {
	if href == "" {
		return "", fmt.Errorf("%w: %w: empty href", ErrCompilation, ErrUnsupportedSource)
	}
	if fileutil.IsURL(href) {
		return "", fmt.Errorf("%w: %w: remote stylesheet %s", ErrCompilation, ErrUnsupportedSource, href)
	}
	href, _, _ = strings.Cut(href, "?")
	rel := strings.TrimLeft(filepath.FromSlash(href), `/\`)
	abs := filepath.Join(c.styleRoot, rel)
	if !fileutil.IsPathUnderDir(abs, c.styleRoot) {
		return "", fmt.Errorf("%w: %w: %s escapes style root", ErrCompilation, ErrUnsupportedSource, href)
	}
	return abs, nil
}

// OutputPath returns where the CSS compiled from source is written.
func (c *Compiler) OutputPath(source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(c.outputDir, CSSDir, stem+".css")
}

// Compile compiles source (an absolute path) and writes the result. Repeated
// calls for the same source return the first result, including a failure.
// A different source mapping to an already claimed output path fails with
// ErrOutputCollision.
func (c *Compiler) Compile(ctx context.Context, source string) (Compiled, error) {
	outPath := c.OutputPath(source)

	if entry, ok := c.lookup(outPath); ok {
		return checkSource(entry, source)
	}

	v, _, _ := c.group.Do(outPath, func() (any, error) {
		if entry, ok := c.lookup(outPath); ok {
			return entry, nil
		}
		compiled, err := c.compile(ctx, source, outPath)
		entry := memoEntry{compiled: compiled, err: err}
		if err == nil || ctx.Err() == nil {
			c.mu.Lock()
			c.memo[outPath] = entry
			c.mu.Unlock()
		}
		return entry, nil
	})
	return checkSource(v.(memoEntry), source)
}

func (c *Compiler) lookup(outPath string) (memoEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.memo[outPath]
	return entry, ok
}

func checkSource(entry memoEntry, source string) (Compiled, error) {
	if entry.compiled.Source != "" && entry.compiled.Source != source {
		return Compiled{}, fmt.Errorf("%w: %s and %s both compile to %s",
			ErrOutputCollision, entry.compiled.Source, source, entry.compiled.OutputPath)
	}
	return entry.compiled, entry.err
}

func (c *Compiler) compile(ctx context.Context, source, outPath string) (Compiled, error) {
	// Failures still record the source so a second source claiming the
	// same output path is reported as a collision.
	failed := Compiled{Source: source, OutputPath: outPath}

	syntax, err := SyntaxFor(source)
	if err != nil {
		return failed, fmt.Errorf("%w: %w", ErrCompilation, err)
	}
	content, err := os.ReadFile(source) // #nosec G304 -- path contained in style root
	if err != nil {
		return failed, fmt.Errorf("%w: reading %s: %w", ErrCompilation, source, err)
	}

	transpiler := c.sass
	if syntax == SyntaxCSS {
		transpiler = c.css
	}
	res, err := transpiler.Transpile(ctx, Request{
		Path:         source,
		Source:       string(content),
		Syntax:       syntax,
		Mode:         c.mode,
		IncludePaths: []string{filepath.Dir(source), c.styleRoot},
	})
	if err != nil {
		return failed, fmt.Errorf("%w: %s: %w", ErrCompilation, filepath.Base(source), err)
	}

	compiled := Compiled{Source: source, OutputPath: outPath, CSS: res.CSS}
	if c.mode.SourceMaps() && res.SourceMap != "" {
		mapPath := outPath + ".map"
		compiled.SourceMap = res.SourceMap
		compiled.CSS = strings.TrimRight(res.CSS, "\n") +
			"\n\n/*# sourceMappingURL=" + filepath.Base(mapPath) + " */\n"
		if err := fileutil.WriteFileAtomic(mapPath, []byte(res.SourceMap)); err != nil {
			return failed, fmt.Errorf("writing source map: %w", err)
		}
	}
	if err := fileutil.WriteFileAtomic(outPath, []byte(compiled.CSS)); err != nil {
		return failed, fmt.Errorf("writing stylesheet: %w", err)
	}

	c.logger.Debug("stylesheet compiled",
		slog.String("source", source),
		slog.String("output", outPath),
		slog.String("mode", string(c.mode)))
	return compiled, nil
}

// Stylesheets returns the successfully compiled stylesheets sorted by
// output path.
func (c *Compiler) Stylesheets() []Compiled {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Compiled, 0, len(c.memo))
	for _, e := range c.memo {
		if e.err == nil {
			out = append(out, e.compiled)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OutputPath < out[j].OutputPath })
	return out
}

// Close stops the Dart Sass process the Compiler started. Transpilers
// passed in Config are left to their owner.
func (c *Compiler) Close() error {
	if !c.ownsSass {
		return nil
	}
	if closer, ok := c.sass.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
