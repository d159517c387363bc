package stylesheet

// Notes:
// - Sass compilation is exercised through fakeTranspiler; DartSass against a
//   real binary is covered by TestDartSass, skipped when "sass" is not on PATH.
// - Write failures (read-only output directory) are not tested: they are
//   platform-specific and surface through fileutil.WriteFileAtomic.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeTranspiler records requests and returns canned CSS.
type fakeTranspiler struct {
	calls atomic.Int32
	mu    sync.Mutex
	reqs  []Request
	css   string
	smap  string
	err   error
}

func (f *fakeTranspiler) Transpile(ctx context.Context, req Request) (Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.err != nil {
		return Result{}, f.err
	}
	css := f.css
	if req.Mode.Compressed() {
		css = strings.Join(strings.Fields(css), "")
	}
	res := Result{CSS: css}
	if req.Mode.SourceMaps() {
		res.SourceMap = f.smap
	}
	return res, nil
}

var _ Transpiler = (*fakeTranspiler)(nil)

const styledTemplate = `<!DOCTYPE html>
<html>
<head>
<title>{{ title }}</title>
<link rel="stylesheet" type="text/sass" href="sass/main.scss">
</head>
<body>{{ main }}</body>
</html>`

// newSite creates a style root with sass/main.scss and returns it with an
// output directory named "public".
func newSite(t *testing.T) (styleRoot, out string) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sass"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "sass", "main.scss"), []byte("$c: red;\nbody { color: $c; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root, filepath.Join(root, "public")
}

func newTestCompiler(t *testing.T, styleRoot, out string, mode Mode, sass Transpiler) *Compiler {
	t.Helper()
	c, err := NewCompiler(Config{StyleRoot: styleRoot, OutputDir: out, Mode: mode, Sass: sass})
	if err != nil {
		t.Fatalf("NewCompiler() error = %v", err)
	}
	return c
}

// ---------------------------------------------------------------------------
// TestProcess_Production - Compressed CSS, rewritten link
// ---------------------------------------------------------------------------

func TestProcess_Production(t *testing.T) {
	t.Parallel()

	root, out := newSite(t)
	fake := &fakeTranspiler{css: "body {\n  color: red;\n}\n", smap: "{}"}
	c := newTestCompiler(t, root, out, ModeProduction, fake)

	got, compiled, err := c.Process(context.Background(), styledTemplate, filepath.Join(out, "hello"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	wantPath := filepath.Join(out, "css", "main.css")
	if compiled == nil || compiled.OutputPath != wantPath {
		t.Fatalf("Process() compiled = %+v, want output %s", compiled, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("compiled stylesheet not written: %v", err)
	}
	if string(data) != "body{color:red;}" {
		t.Errorf("stylesheet = %q, want compressed output", data)
	}
	if _, err := os.Stat(wantPath + ".map"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("source map written in production: %v", err)
	}

	if strings.Contains(got, "text/sass") {
		t.Errorf("template still contains text/sass:\n%s", got)
	}
	if !strings.Contains(got, `<link rel="stylesheet" type="text/css" href="../css/main.css">`) {
		t.Errorf("template link not rewritten:\n%s", got)
	}
	if strings.Replace(got, `type="text/css" href="../css/main.css"`, `type="text/sass" href="sass/main.scss"`, 1) != styledTemplate {
		t.Errorf("bytes outside the link changed:\n%s", got)
	}

	if len(fake.reqs) != 1 || fake.reqs[0].Mode != ModeProduction || fake.reqs[0].Syntax != SyntaxSCSS {
		t.Errorf("transpiler requests = %+v, want one production SCSS request", fake.reqs)
	}
	if !strings.Contains(fake.reqs[0].Source, "$c: red;") {
		t.Errorf("transpiler source = %q, want file content", fake.reqs[0].Source)
	}
}

// ---------------------------------------------------------------------------
// TestProcess_Development - Source map emitted and referenced
// ---------------------------------------------------------------------------

func TestProcess_Development(t *testing.T) {
	t.Parallel()

	root, out := newSite(t)
	fake := &fakeTranspiler{css: "body {\n  color: red;\n}\n", smap: `{"version":3}`}
	c := newTestCompiler(t, root, out, ModeDevelopment, fake)

	_, compiled, err := c.Process(context.Background(), styledTemplate, filepath.Join(out, "hello"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	css, err := os.ReadFile(compiled.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(css), "color: red;") {
		t.Errorf("stylesheet = %q, want expanded output", css)
	}
	if !strings.HasSuffix(string(css), "/*# sourceMappingURL=main.css.map */\n") {
		t.Errorf("stylesheet = %q, want sourceMappingURL comment", css)
	}
	smap, err := os.ReadFile(compiled.OutputPath + ".map")
	if err != nil {
		t.Fatalf("source map not written: %v", err)
	}
	if string(smap) != `{"version":3}` {
		t.Errorf("source map = %q", smap)
	}
}

// ---------------------------------------------------------------------------
// TestProcess_HrefDepth - Relative href follows the page directory
// ---------------------------------------------------------------------------

func TestProcess_HrefDepth(t *testing.T) {
	t.Parallel()

	root, out := newSite(t)
	c := newTestCompiler(t, root, out, ModeProduction, &fakeTranspiler{css: "a{}"})

	tests := []struct {
		name    string
		pageDir string
		want    string
	}{
		{"directory layout", filepath.Join(out, "hello"), `href="../css/main.css"`},
		{"flat layout", out, `href="css/main.css"`},
	}
	for _, tt := range tests {
		got, _, err := c.Process(context.Background(), styledTemplate, tt.pageDir)
		if err != nil {
			t.Fatalf("%s: Process() error = %v", tt.name, err)
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s: template = %q, want %s", tt.name, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestProcess_NoLink - Templates without preprocessor links pass through
// ---------------------------------------------------------------------------

func TestProcess_NoLink(t *testing.T) {
	t.Parallel()

	root, out := newSite(t)
	fake := &fakeTranspiler{css: "a{}"}
	c := newTestCompiler(t, root, out, ModeProduction, fake)

	tmpl := `<link rel="stylesheet" href="/site.css"><main>{{ main }}</main>`
	got, compiled, err := c.Process(context.Background(), tmpl, out)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got != tmpl || compiled != nil {
		t.Errorf("Process() = %q, %v; want unchanged, nil", got, compiled)
	}
	if fake.calls.Load() != 0 {
		t.Errorf("transpiler called %d times, want 0", fake.calls.Load())
	}
}

// ---------------------------------------------------------------------------
// TestProcess_Errors - Failures leave the template unchanged
// ---------------------------------------------------------------------------

func TestProcess_Errors(t *testing.T) {
	t.Parallel()

	root, out := newSite(t)

	tests := []struct {
		name    string
		tmpl    string
		sass    Transpiler
		wantErr []error
	}{
		{
			name:    "multiple preprocessor links",
			tmpl:    `<link type="text/sass" href="sass/main.scss"><link type="text/scss" href="sass/other.scss">`,
			sass:    &fakeTranspiler{css: "a{}"},
			wantErr: []error{ErrCompilation, ErrMultipleStylesheets},
		},
		{
			name:    "compiler diagnostic",
			tmpl:    styledTemplate,
			sass:    &fakeTranspiler{err: errors.New(`expected "}"`)},
			wantErr: []error{ErrCompilation},
		},
		{
			name:    "missing source",
			tmpl:    `<link type="text/sass" href="sass/missing.scss">`,
			sass:    &fakeTranspiler{css: "a{}"},
			wantErr: []error{ErrCompilation, os.ErrNotExist},
		},
		{
			name:    "remote source",
			tmpl:    `<link type="text/sass" href="https://cdn.example.com/x.scss">`,
			sass:    &fakeTranspiler{css: "a{}"},
			wantErr: []error{ErrCompilation, ErrUnsupportedSource},
		},
		{
			name:    "escaping source",
			tmpl:    `<link type="text/sass" href="../../etc/x.scss">`,
			sass:    &fakeTranspiler{css: "a{}"},
			wantErr: []error{ErrCompilation, ErrUnsupportedSource},
		},
		{
			name:    "unknown extension",
			tmpl:    `<link type="text/sass" href="sass/main.less">`,
			sass:    &fakeTranspiler{css: "a{}"},
			wantErr: []error{ErrCompilation, ErrUnsupportedSource},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCompiler(t, root, filepath.Join(t.TempDir(), "public"), ModeProduction, tt.sass)
			got, compiled, err := c.Process(context.Background(), tt.tmpl, out)
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("Process() error = %v, want %v", err, want)
				}
			}
			if got != tt.tmpl {
				t.Errorf("Process() template changed on error: %q", got)
			}
			if compiled != nil {
				t.Errorf("Process() compiled = %+v, want nil", compiled)
			}
		})
	}

	t.Run("diagnostic carried in message", func(t *testing.T) {
		t.Parallel()

		c := newTestCompiler(t, root, filepath.Join(t.TempDir(), "public"), ModeProduction,
			&fakeTranspiler{err: errors.New(`main.scss:3: expected "}"`)})
		_, _, err := c.Process(context.Background(), styledTemplate, out)
		if err == nil || !strings.Contains(err.Error(), `expected "}"`) {
			t.Errorf("Process() error = %v, want compiler diagnostic", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestCompile_Memoized - At most one compilation per stylesheet
// ---------------------------------------------------------------------------

func TestCompile_Memoized(t *testing.T) {
	t.Parallel()

	root, out := newSite(t)
	fake := &fakeTranspiler{css: "a{}"}
	c := newTestCompiler(t, root, out, ModeProduction, fake)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := c.Process(context.Background(), styledTemplate, filepath.Join(out, "p")); err != nil {
				t.Errorf("Process() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if n := fake.calls.Load(); n != 1 {
		t.Errorf("transpiler called %d times, want 1", n)
	}
	if got := c.Stylesheets(); len(got) != 1 {
		t.Errorf("Stylesheets() = %d entries, want 1", len(got))
	}
}

func TestCompile_FailureMemoized(t *testing.T) {
	t.Parallel()

	root, out := newSite(t)
	fake := &fakeTranspiler{err: errors.New("boom")}
	c := newTestCompiler(t, root, out, ModeProduction, fake)

	for range 3 {
		if _, _, err := c.Process(context.Background(), styledTemplate, out); !errors.Is(err, ErrCompilation) {
			t.Fatalf("Process() error = %v, want ErrCompilation", err)
		}
	}
	if n := fake.calls.Load(); n != 1 {
		t.Errorf("transpiler called %d times, want 1", n)
	}
	if got := c.Stylesheets(); len(got) != 0 {
		t.Errorf("Stylesheets() = %+v, want none", got)
	}
}

// ---------------------------------------------------------------------------
// TestCompile_Collision - Two sources, one output path
// ---------------------------------------------------------------------------

func TestCompile_Collision(t *testing.T) {
	t.Parallel()

	root, out := newSite(t)
	if err := os.MkdirAll(filepath.Join(root, "theme"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "theme", "main.scss"), []byte("b{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := newTestCompiler(t, root, out, ModeProduction, &fakeTranspiler{css: "a{}"})

	if _, err := c.Compile(context.Background(), filepath.Join(root, "sass", "main.scss")); err != nil {
		t.Fatalf("first Compile() error = %v", err)
	}
	_, err := c.Compile(context.Background(), filepath.Join(root, "theme", "main.scss"))
	if !errors.Is(err, ErrOutputCollision) {
		t.Errorf("second Compile() error = %v, want ErrOutputCollision", err)
	}
}

// ---------------------------------------------------------------------------
// TestCompile_PlainCSS - .css sources are minified in production
// ---------------------------------------------------------------------------

func TestCompile_PlainCSS(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	src := filepath.Join(root, "site.css")
	if err := os.WriteFile(src, []byte("body {\n  color: #ff0000;\n  margin: 0px;\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sass := &fakeTranspiler{css: "unused"}
	prod := newTestCompiler(t, root, filepath.Join(root, "prod"), ModeProduction, sass)
	got, err := prod.Compile(context.Background(), src)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if strings.ContainsAny(got.CSS, "\n ") {
		t.Errorf("production CSS = %q, want minified", got.CSS)
	}
	if !strings.Contains(got.CSS, "body{") {
		t.Errorf("production CSS = %q, want body rule", got.CSS)
	}

	dev := newTestCompiler(t, root, filepath.Join(root, "dev"), ModeDevelopment, sass)
	got, err = dev.Compile(context.Background(), src)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.Contains(got.CSS, "color: #ff0000;") {
		t.Errorf("development CSS = %q, want source unchanged", got.CSS)
	}
	if sass.calls.Load() != 0 {
		t.Errorf("sass transpiler used for .css source")
	}
}

// ---------------------------------------------------------------------------
// TestCompile_Idempotent - Same input, byte-identical output
// ---------------------------------------------------------------------------

func TestCompile_Idempotent(t *testing.T) {
	t.Parallel()

	root, out := newSite(t)
	src := filepath.Join(root, "sass", "main.scss")

	var outputs []string
	for range 2 {
		c := newTestCompiler(t, root, out, ModeDevelopment, &fakeTranspiler{css: "a {}\n", smap: "{}"})
		if _, err := c.Compile(context.Background(), src); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(filepath.Join(out, "css", "main.css"))
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, string(data))
	}
	if outputs[0] != outputs[1] {
		t.Errorf("outputs differ: %q vs %q", outputs[0], outputs[1])
	}
}

// ---------------------------------------------------------------------------
// TestResolveSource / TestNewCompiler
// ---------------------------------------------------------------------------

func TestResolveSource(t *testing.T) {
	t.Parallel()

	root, out := newSite(t)
	c := newTestCompiler(t, root, out, ModeProduction, &fakeTranspiler{})

	want := filepath.Join(root, "sass", "main.scss")
	for _, href := range []string{"sass/main.scss", "/sass/main.scss", "./sass/main.scss", "sass/main.scss?v=2"} {
		got, err := c.ResolveSource(href)
		if err != nil {
			t.Errorf("ResolveSource(%q) error = %v", href, err)
			continue
		}
		if got != want {
			t.Errorf("ResolveSource(%q) = %q, want %q", href, got, want)
		}
	}
}

func TestNewCompiler(t *testing.T) {
	t.Parallel()

	if _, err := NewCompiler(Config{}); !errors.Is(err, ErrCompilation) {
		t.Errorf("NewCompiler(empty) error = %v, want ErrCompilation", err)
	}

	c, err := NewCompiler(Config{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewCompiler() error = %v", err)
	}
	if c.Mode() != DefaultMode {
		t.Errorf("Mode() = %q, want %q", c.Mode(), DefaultMode)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unstarted compiler error = %v", err)
	}
}

// closingTranspiler records Close calls.
type closingTranspiler struct {
	fakeTranspiler
	closed int
}

func (c *closingTranspiler) Close() error {
	c.closed++
	return nil
}

func TestCompiler_Close(t *testing.T) {
	t.Parallel()

	t.Run("caller transpiler left open", func(t *testing.T) {
		t.Parallel()

		sass := &closingTranspiler{}
		c, err := NewCompiler(Config{OutputDir: t.TempDir(), Sass: sass})
		if err != nil {
			t.Fatal(err)
		}
		if err := c.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if sass.closed != 0 {
			t.Errorf("Close() closed a caller transpiler %d times", sass.closed)
		}
	})

	t.Run("owned dart sass closed", func(t *testing.T) {
		t.Parallel()

		c, err := NewCompiler(Config{OutputDir: t.TempDir(), SassBinary: "/nonexistent/sass"})
		if err != nil {
			t.Fatal(err)
		}
		if !c.ownsSass {
			t.Fatal("default DartSass not owned by the compiler")
		}
		ds, ok := c.sass.(*DartSass)
		if !ok {
			t.Fatalf("sass = %T, want *DartSass", c.sass)
		}
		if ds.binary != "/nonexistent/sass" {
			t.Errorf("binary = %q, want the configured path", ds.binary)
		}
		if err := c.Close(); err != nil {
			t.Errorf("Close() on unstarted compiler error = %v", err)
		}
	})
}
