package stylesheet

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

// Syntax identifies the source language of a stylesheet.
type Syntax int

const (
	SyntaxSCSS Syntax = iota
	SyntaxSASS        // indented syntax
	SyntaxCSS
)

func (s Syntax) String() string {
	switch s {
	case SyntaxSASS:
		return "sass"
	case SyntaxCSS:
		return "css"
	default:
		return "scss"
	}
}

// SyntaxFor maps a file extension to its Syntax.
func SyntaxFor(path string) (Syntax, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".scss":
		return SyntaxSCSS, nil
	case ".sass":
		return SyntaxSASS, nil
	case ".css":
		return SyntaxCSS, nil
	default:
		return 0, fmt.Errorf("%w: %s (want .scss, .sass or .css)", ErrUnsupportedSource, filepath.Base(path))
	}
}

// Request is one stylesheet to compile.
type Request struct {
	Path         string // absolute source path
	Source       string // file content
	Syntax       Syntax
	Mode         Mode
	IncludePaths []string
}

// Result is the compiler output. SourceMap is empty when not requested.
type Result struct {
	CSS       string
	SourceMap string
}

// Transpiler turns a stylesheet source into CSS.
type Transpiler interface {
	Transpile(ctx context.Context, req Request) (Result, error)
}

// PlainCSS passes CSS through, minifying it in production mode.
type PlainCSS struct {
	m *minify.M
}

// NewPlainCSS creates a PlainCSS transpiler.
func NewPlainCSS() *PlainCSS {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	return &PlainCSS{m: m}
}

// Transpile implements Transpiler.
func (p *PlainCSS) Transpile(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !req.Mode.Compressed() {
		return Result{CSS: req.Source}, nil
	}
	out, err := p.m.String("text/css", req.Source)
	if err != nil {
		return Result{}, fmt.Errorf("minifying %s: %w", filepath.Base(req.Path), err)
	}
	return Result{CSS: out}, nil
}

var _ Transpiler = (*PlainCSS)(nil)
