package stylesheet

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
)

// DefaultSassTimeout bounds a single Dart Sass compilation.
const DefaultSassTimeout = 30 * time.Second

// DartSass compiles SCSS and indented Sass through the Dart Sass embedded
// protocol. The compiler process is started on first use and shared by
// all callers until Close.
type DartSass struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	t         *godartsass.Transpiler
	startErr  error
	startOnce bool
}

// DartSassOption configures a DartSass transpiler.
type DartSassOption func(*DartSass)

// WithBinary sets the Dart Sass executable. Empty means "sass" from PATH.
func WithBinary(path string) DartSassOption {
	return func(d *DartSass) { d.binary = path }
}

// WithTimeout bounds each compilation.
func WithTimeout(timeout time.Duration) DartSassOption {
	return func(d *DartSass) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithLogger receives compiler warnings and deprecation notices.
func WithLogger(logger *slog.Logger) DartSassOption {
	return func(d *DartSass) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDartSass creates a DartSass transpiler. No process is started yet.
func NewDartSass(opts ...DartSassOption) *DartSass {
	d := &DartSass{timeout: DefaultSassTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DartSass) transpiler() (*godartsass.Transpiler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.startOnce {
		return d.t, d.startErr
	}
	d.startOnce = true

	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: d.binary,
		Timeout:                  d.timeout,
		LogEventHandler: func(e godartsass.LogEvent) {
			switch e.Type {
			case godartsass.LogEventTypeDebug:
				d.logger.Debug("sass", "message", e.Message)
			default:
				d.logger.Warn("sass", "message", e.Message)
			}
		},
	})
	if err != nil {
		d.startErr = fmt.Errorf("%w: %w", ErrCompilerUnavailable, err)
		return nil, d.startErr
	}
	d.t = t
	return t, nil
}

// Transpile implements Transpiler.
func (d *DartSass) Transpile(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	t, err := d.transpiler()
	if err != nil {
		return Result{}, err
	}

	args := godartsass.Args{
		Source:       req.Source,
		URL:          fileURL(req.Path),
		IncludePaths: req.IncludePaths,
		SourceSyntax: godartsass.SourceSyntaxSCSS,
		OutputStyle:  godartsass.OutputStyleExpanded,
	}
	if req.Syntax == SyntaxSASS {
		args.SourceSyntax = godartsass.SourceSyntaxSASS
	}
	if req.Mode.Compressed() {
		args.OutputStyle = godartsass.OutputStyleCompressed
	}
	if req.Mode.SourceMaps() {
		args.EnableSourceMap = true
		args.SourceMapIncludeSources = true
	}

	res, err := t.Execute(args)
	if err != nil {
		return Result{}, err
	}
	return Result{CSS: res.CSS, SourceMap: res.SourceMap}, nil
}

// Close stops the compiler process if it was started. A later Transpile
// starts a new one.
func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return nil
	}
	err := d.t.Close()
	d.t = nil
	d.startOnce = false
	return err
}

func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

var _ Transpiler = (*DartSass)(nil)
