package md2site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-md2site/internal/assets"
	"github.com/alnah/go-md2site/internal/content"
	"github.com/alnah/go-md2site/internal/dateutil"
	"github.com/alnah/go-md2site/internal/feed"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/frontmatter"
	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/stylesheet"
)

// Files written at the output root.
const (
	IndexFileName = "index.html"
	FeedFileName  = "rss.xml"
)

// errFailFast is the cancellation cause set when a document fails in
// fail-fast mode.
var errFailFast = errors.New("fail-fast: an earlier document failed")

// Builder turns a directory of markdown posts into HTML pages.
// Create with NewBuilder. Builds on one Builder must not overlap.
type Builder struct {
	postsRoot    string
	templateRoot string
	outputDir    string
	styleRoot    string
	mode         Mode
	layout       Layout
	workers      int
	failFast     bool
	drafts       bool
	strict       bool
	extensions   []string
	render       RenderConfig
	sass         Transpiler
	sassBinary   string
	loader       TemplateLoader
	logger       *slog.Logger
	site         Site

	renderer pipeline.MarkdownRenderer
}

// NewBuilder creates a Builder. Options are validated here so Build only
// fails on filesystem and document problems.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		postsRoot:    DefaultPostsRoot,
		templateRoot: DefaultTemplateRoot,
		outputDir:    DefaultOutputDir,
		mode:         stylesheet.DefaultMode,
		layout:       LayoutDirectory,
		extensions:   DefaultExtensions,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.postsRoot == "" {
		return nil, fmt.Errorf("%w: posts root is required", ErrInvalidOption)
	}
	if b.outputDir == "" {
		return nil, fmt.Errorf("%w: output directory is required", ErrInvalidOption)
	}
	if b.workers < 0 {
		return nil, fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidOption, b.workers)
	}

	mode, err := stylesheet.ParseMode(string(b.mode))
	if err != nil {
		return nil, err
	}
	b.mode = mode

	layout, err := ParseLayout(string(b.layout))
	if err != nil {
		return nil, err
	}
	b.layout = layout

	if _, err := dateutil.FormatDate(time.Time{}, b.site.DateFormat); err != nil {
		return nil, fmt.Errorf("%w: date format: %w", ErrInvalidOption, err)
	}
	if b.site.Feed && b.site.URL == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, feed.ErrMissingSiteURL)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.loader == nil {
		resolver, err := assets.NewTemplateResolver(b.templateRoot)
		if err != nil {
			return nil, fmt.Errorf("template root: %w", err)
		}
		b.loader = resolver
	}
	b.renderer = pipeline.NewMarkdownRenderer(b.render)

	return b, nil
}

// buildRun holds the state of one Build call. Slices are indexed by
// discovery order; each index is written by a single worker.
type buildRun struct {
	b        *Builder
	ctx      context.Context
	cancel   context.CancelCauseFunc
	logger   *slog.Logger
	outDir   string
	compiler *stylesheet.Compiler

	docs      []content.Document
	outPaths  []string
	records   []*frontmatter.Record
	results   []Result
	durations []time.Duration
	posts     map[string]bool // names that get a page, for link rewriting

	mu       sync.Mutex
	warnings []Warning
}

// Build renders every post under the posts root.
//
// Documents are independent: by default a failing document is recorded in
// the Report and the others are still built. With WithFailFast the first
// failure stops the build and is returned wrapped in ErrBuildFailed.
// Discovery failures and context cancellation always abort. Stylesheet
// failures are warnings: the page is written with the unmodified link.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	report := &Report{BuildID: uuid.NewString()}
	logger := b.logger.With(slog.String("build.id", report.BuildID))

	outDir, err := filepath.Abs(b.outputDir)
	if err != nil {
		return report, fmt.Errorf("resolving output directory: %w", err)
	}

	docs, err := content.Locate(b.postsRoot)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}
	docs = content.Filter(docs, b.extensions)

	workers := ResolvePoolSize(b.workers)
	logger.Info("build started",
		slog.Int("posts", len(docs)),
		slog.String("mode", string(b.mode)),
		slog.String("layout", string(b.layout)),
		slog.Int("workers", workers))

	compiler, err := stylesheet.NewCompiler(stylesheet.Config{
		StyleRoot:  b.styleRoot,
		OutputDir:  outDir,
		Mode:       b.mode,
		Sass:       b.sass,
		SassBinary: b.sassBinary,
		Logger:     logger,
	})
	if err != nil {
		return report, err
	}
	defer func() {
		if err := compiler.Close(); err != nil {
			logger.Warn("closing sass compiler", slog.Any("error", err))
		}
	}()

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	r := &buildRun{
		b:         b,
		ctx:       runCtx,
		cancel:    cancel,
		logger:    logger,
		outDir:    outDir,
		compiler:  compiler,
		docs:      docs,
		outPaths:  make([]string, len(docs)),
		records:   make([]*frontmatter.Record, len(docs)),
		results:   make([]Result, len(docs)),
		durations: make([]time.Duration, len(docs)),
	}

	r.claimOutputs()
	runBatch(len(docs), workers, r.parse)
	r.collectPosts()
	runBatch(len(docs), workers, r.render)

	for i := range r.results {
		r.results[i].Duration = r.durations[i]
	}
	report.Results = r.results
	report.Stylesheets = compiler.Stylesheets()

	if err := ctx.Err(); err != nil {
		report.Warnings = r.sortedWarnings()
		return report, err
	}
	if b.failFast {
		if errs := report.Errors(); len(errs) > 0 {
			report.Warnings = r.sortedWarnings()
			return report, fmt.Errorf("%w: %w", ErrBuildFailed, errs[0])
		}
	}

	if err := r.writeSiteFiles(report); err != nil {
		report.Warnings = r.sortedWarnings()
		return report, err
	}
	report.Stylesheets = compiler.Stylesheets()
	report.Warnings = r.sortedWarnings()

	logger.Info("build finished",
		slog.Int("written", report.Written()),
		slog.Int("skipped", report.Skipped()),
		slog.Int("failed", report.Failed()),
		slog.Int("warnings", len(report.Warnings)),
		slog.Duration("duration", time.Since(start)))
	return report, nil
}

// claimOutputs assigns output paths in discovery order. A document whose
// path is already taken fails; the first claimant keeps it.
func (r *buildRun) claimOutputs() {
	claimed := make(map[string]string, len(r.docs)+1)
	if r.b.site.IndexTemplate != "" {
		claimed[filepath.Join(r.outDir, IndexFileName)] = "the posts listing"
	}
	for i, doc := range r.docs {
		path := r.b.layout.PagePath(r.outDir, doc.Name)
		if owner, ok := claimed[path]; ok {
			r.fail(i, StageDiscovered, fmt.Errorf("%w: %s is already produced by %s", ErrOutputCollision, path, owner))
			continue
		}
		claimed[path] = doc.Path
		r.outPaths[i] = path
		r.results[i] = Result{Source: doc.Path, OutputPath: path, Status: StatusCanceled}
	}
}

// parse reads and validates the frontmatter of document i.
func (r *buildRun) parse(i int) {
	if r.outPaths[i] == "" {
		return
	}
	doc := r.docs[i]
	if err := r.ctx.Err(); err != nil {
		r.canceled(i, StageDiscovered)
		return
	}
	start := time.Now()
	defer func() { r.durations[i] += time.Since(start) }()

	raw, err := os.ReadFile(doc.Path) // #nosec G304 -- discovered path
	if err != nil {
		r.fail(i, StageFrontmatterParsed, fmt.Errorf("reading source: %w", err))
		return
	}
	rec, err := frontmatter.Parse(doc.Path, raw, true)
	if err != nil {
		r.fail(i, StageFrontmatterParsed, err)
		return
	}
	if rec.Draft && !r.b.drafts {
		r.results[i].Status = StatusSkipped
		r.logger.Debug("draft skipped", slog.String("path", doc.Path))
		return
	}
	r.records[i] = &rec
}

func (r *buildRun) collectPosts() {
	r.posts = make(map[string]bool, len(r.docs))
	for i, rec := range r.records {
		if rec != nil {
			r.posts[r.docs[i].Name] = true
		}
	}
}

func (r *buildRun) resolvePost(name string) (string, bool) {
	if !r.posts[name] {
		return "", false
	}
	return r.b.layout.siblingHref(name), true
}

// render runs the remaining stages of document i and writes its page.
func (r *buildRun) render(i int) {
	rec := r.records[i]
	if rec == nil {
		return
	}
	doc := r.docs[i]
	if err := r.ctx.Err(); err != nil {
		r.canceled(i, StageFrontmatterParsed)
		return
	}
	start := time.Now()
	defer func() { r.durations[i] += time.Since(start) }()

	page, stage, err := r.renderPage(doc, *rec, r.outPaths[i])
	if err != nil {
		r.fail(i, stage, err)
		return
	}
	if err := fileutil.WriteFileAtomic(page.OutputPath, []byte(page.HTML)); err != nil {
		r.fail(i, StageWritten, err)
		return
	}
	r.results[i].Status = StatusWritten
	r.logger.Debug("page written",
		slog.String("path", page.Source),
		slog.String("output", page.OutputPath))
}

// renderPage builds the page of one post, or returns the stage that failed.
func (r *buildRun) renderPage(doc content.Document, rec frontmatter.Record, outPath string) (Page, Stage, error) {
	tmpl, err := r.b.loader.LoadTemplate(rec.Template)
	if err != nil {
		return Page{}, StageTemplateLoaded, err
	}

	values, err := r.b.placeholders(rec, doc.Name)
	if err != nil {
		return Page{}, StageMetadataSubstituted, err
	}
	html := pipeline.SubstituteMetadata(tmpl, values)
	if r.b.strict {
		if err := pipeline.CheckResolved(html); err != nil {
			return Page{}, StageMetadataSubstituted, fmt.Errorf("template %s: %w", rec.Template, err)
		}
	}

	html, err = r.applyStylesheet(doc.Path, html, filepath.Dir(outPath))
	if err != nil {
		return Page{}, StageStylesheetCompiled, err
	}

	body, err := r.b.renderer.Render(r.ctx, rec.Body)
	if err != nil {
		return Page{}, StageBodyRendered, err
	}
	body, err = pipeline.RewritePostLinks(body, r.resolvePost)
	if err != nil {
		return Page{}, StageBodyRendered, fmt.Errorf("rewriting post links: %w", err)
	}

	if !pipeline.HasBodyPlaceholder(html) {
		r.warn(doc.Path, "body not inserted", fmt.Errorf("template %s has no {{ %s }} placeholder", rec.Template, pipeline.BodyPlaceholder))
	}
	return Page{
		Source:     doc.Path,
		Name:       doc.Name,
		OutputPath: outPath,
		HTML:       pipeline.SubstituteBody(html, body),
	}, StageBodySubstituted, nil
}

// applyStylesheet compiles the template's stylesheet. Compilation
// failures become warnings and leave the template unchanged; only
// cancellation is returned.
func (r *buildRun) applyStylesheet(source, tmpl, pageDir string) (string, error) {
	out, _, err := r.compiler.Process(r.ctx, tmpl, pageDir)
	if err == nil {
		return out, nil
	}
	if ctxErr := r.ctx.Err(); ctxErr != nil {
		return tmpl, ctxErr
	}
	r.warn(source, "stylesheet not applied", err)
	return tmpl, nil
}

// placeholders builds the metadata values of a post.
func (b *Builder) placeholders(rec frontmatter.Record, name string) (pipeline.Placeholders, error) {
	values := make(map[string]string, len(rec.Extra)+len(pipeline.MetadataPlaceholders))
	for k, v := range rec.Extra {
		values[k] = v
	}
	values["title"] = rec.Title
	values["description"] = rec.Description
	values["author"] = rec.Author
	values["canonical"] = rec.Canonical
	values["slug"] = name
	values["tags"] = strings.Join(rec.Tags, ", ")
	if !rec.Date.IsZero() {
		date, err := dateutil.FormatDate(rec.Date, b.site.DateFormat)
		if err != nil {
			return nil, err
		}
		values["date"] = date
	}
	return pipeline.NewPlaceholders(values), nil
}

func (r *buildRun) fail(i int, stage Stage, err error) {
	doc := r.docs[i]
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if r.ctx.Err() != nil {
			r.canceled(i, stage)
			return
		}
	}
	r.results[i] = Result{
		Source:     doc.Path,
		OutputPath: r.outPaths[i],
		Status:     StatusFailed,
		Err:        &DocumentError{Path: doc.Path, Stage: stage, Err: err},
	}
	r.logger.Error("document failed",
		slog.String("path", doc.Path),
		slog.String("stage", stage.String()),
		slog.Any("error", err))
	if r.b.failFast {
		r.cancel(errFailFast)
	}
}

func (r *buildRun) canceled(i int, stage Stage) {
	r.results[i] = Result{
		Source:     r.docs[i].Path,
		OutputPath: r.outPaths[i],
		Status:     StatusCanceled,
		Err:        &DocumentError{Path: r.docs[i].Path, Stage: stage, Err: context.Cause(r.ctx)},
	}
}

func (r *buildRun) warn(path, msg string, err error) {
	r.mu.Lock()
	r.warnings = append(r.warnings, Warning{Path: path, Err: err})
	r.mu.Unlock()
	r.logger.Warn(msg,
		slog.String("path", path),
		slog.Any("error", err))
}

func (r *buildRun) sortedWarnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]Warning(nil), r.warnings...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
