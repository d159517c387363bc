package md2site

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2site/internal/stylesheet"
)

// Layout selects where pages are written.
type Layout string

const (
	// LayoutDirectory writes {out}/{name}/index.html.
	LayoutDirectory Layout = "directory"
	// LayoutFlat writes {out}/{name}.html.
	LayoutFlat Layout = "flat"
)

// ParseLayout validates a layout name. Empty input yields LayoutDirectory.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutDirectory:
		return LayoutDirectory, nil
	case LayoutFlat:
		return LayoutFlat, nil
	default:
		return "", fmt.Errorf("%w: %q (use %s or %s)", ErrInvalidLayout, s, LayoutDirectory, LayoutFlat)
	}
}

// PagePath returns the output file for a post name. It depends only on
// the name, never on frontmatter.
func (l Layout) PagePath(outputDir, name string) string {
	if l == LayoutFlat {
		return filepath.Join(outputDir, name+".html")
	}
	return filepath.Join(outputDir, name, "index.html")
}

// Href returns the link to a post from the site root, slash-separated.
func (l Layout) Href(name string) string {
	if l == LayoutFlat {
		return name + ".html"
	}
	return name + "/"
}

// siblingHref returns the link from one post page to another.
func (l Layout) siblingHref(name string) string {
	if l == LayoutFlat {
		return name + ".html"
	}
	return "../" + name + "/"
}

// Stage is a step of the per-document pipeline.
type Stage int

// Stages in execution order.
const (
	StageDiscovered Stage = iota
	StageFrontmatterParsed
	StageTemplateLoaded
	StageMetadataSubstituted
	StageStylesheetCompiled
	StageBodyRendered
	StageBodySubstituted
	StageWritten
)

var stageNames = [...]string{
	"discovered",
	"frontmatter-parsed",
	"template-loaded",
	"metadata-substituted",
	"stylesheet-compiled",
	"body-rendered",
	"body-substituted",
	"written",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// DocumentError is a failure of one document. Stage is the stage that
// was being entered when the failure happened.
type DocumentError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// Status is the outcome of one document.
type Status int

const (
	StatusWritten Status = iota
	StatusSkipped        // draft
	StatusFailed
	StatusCanceled // not attempted: fail-fast abort or cancelled context
)

func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Page is a rendered post.
type Page struct {
	Source     string // absolute source path
	Name       string // base name without extension
	OutputPath string
	HTML       string
}

// Result is the outcome of one discovered document.
type Result struct {
	Source     string
	OutputPath string // empty when the path was never claimed
	Status     Status
	Err        error // *DocumentError when Status is StatusFailed or StatusCanceled
	Duration   time.Duration
}

// Warning is a non-fatal problem, such as a stylesheet that failed to
// compile while the page was still written.
type Warning struct {
	Path string
	Err  error
}

// Report summarizes a build.
type Report struct {
	BuildID     string
	Results     []Result // in discovery order
	Stylesheets []stylesheet.Compiled
	Warnings    []Warning
	IndexPath   string // empty when no listing page was written
	FeedPath    string // empty when no feed was written
}

// Written returns the number of pages written.
func (r *Report) Written() int { return r.count(StatusWritten) }

// Skipped returns the number of drafts skipped.
func (r *Report) Skipped() int { return r.count(StatusSkipped) }

// Failed returns the number of documents that failed.
func (r *Report) Failed() int { return r.count(StatusFailed) }

func (r *Report) count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Canceled returns the number of documents that were never attempted.
func (r *Report) Canceled() int { return r.count(StatusCanceled) }

// Errors returns the document failures in discovery order.
func (r *Report) Errors() []error {
	var errs []error
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			errs = append(errs, res.Err)
		}
	}
	return errs
}
