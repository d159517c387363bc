package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// codeClassPrefix marks highlighted blocks: <pre><code class="hljs go">.
const codeClassPrefix = "hljs "

// RenderConfig is an immutable description of how markdown is rendered.
// Two renderers built from equal configs produce identical output.
type RenderConfig struct {
	UnsafeHTML bool // pass raw HTML in markdown through
	HardWraps  bool // treat soft line breaks as <br>
	XHTML      bool // self-closing void elements
	Marks      bool // ==text== becomes <mark>text</mark>
}

// MarkdownRenderer abstracts markdown body to HTML fragment conversion.
type MarkdownRenderer interface {
	Render(ctx context.Context, body string) (string, error)
}

// GoldmarkRenderer renders markdown with GFM, footnotes, and class-based
// chroma highlighting. Each instance owns its goldmark pipeline.
type GoldmarkRenderer struct {
	cfg RenderConfig
	md  goldmark.Markdown
}

var _ MarkdownRenderer = (*GoldmarkRenderer)(nil)

// NewMarkdownRenderer builds a renderer from cfg.
func NewMarkdownRenderer(cfg RenderConfig) *GoldmarkRenderer {
	var rendererOpts []renderer.Option
	if cfg.UnsafeHTML {
		rendererOpts = append(rendererOpts, gmhtml.WithUnsafe())
	}
	if cfg.HardWraps {
		rendererOpts = append(rendererOpts, gmhtml.WithHardWraps())
	}
	if cfg.XHTML {
		rendererOpts = append(rendererOpts, gmhtml.WithXHTML())
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithWrapperRenderer(codeBlockWrapper),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
					chromahtml.PreventSurroundingPre(true),
				),
			),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &GoldmarkRenderer{cfg: cfg, md: md}
}

// Config returns the configuration the renderer was built with.
func (r *GoldmarkRenderer) Config() RenderConfig { return r.cfg }

// Render converts a markdown body to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (r *GoldmarkRenderer) Render(ctx context.Context, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	source := normalizeLineEndings(body)
	if r.cfg.Marks {
		source = convertHighlights(source)
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(source), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		out := buf.String()
		if r.cfg.Marks {
			out = ConvertMarkPlaceholders(out)
		}
		done <- result{html: out}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.html, res.err
	}
}

// codeBlockWrapper opens and closes fenced code blocks. Highlighted blocks
// carry the hljs class; everything else gets a bare <pre><code>.
func codeBlockWrapper(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return
	}
	lang, ok := c.Language()
	if !ok || !c.Highlighted() {
		_, _ = w.WriteString("<pre><code>")
		return
	}
	_, _ = w.WriteString(openCode(string(lang)))
}

func openCode(lang string) string {
	return `<pre><code class="` + codeClassPrefix + html.EscapeString(lang) + `">`
}

// HighlightCode highlights a single code block outside of markdown rendering.
// When lang has no lexer or tokenizing fails, the code is returned escaped in
// a bare <pre><code> and highlighted is false.
func HighlightCode(lang, code string) (out string, highlighted bool) {
	fallback := "<pre><code>" + html.EscapeString(code) + "</code></pre>\n"

	lang = strings.TrimSpace(lang)
	if lang == "" {
		return fallback, false
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return fallback, false
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return fallback, false
	}

	formatter := chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true))
	var buf strings.Builder
	buf.WriteString(openCode(lang))
	if err := formatter.Format(&buf, styles.Fallback, iterator); err != nil {
		return fallback, false
	}
	buf.WriteString("</code></pre>\n")
	return buf.String(), true
}
