package stylesheet

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Preprocessor link types. Matching is case-insensitive.
var preprocessorTypes = map[string]bool{
	"text/sass": true,
	"text/scss": true,
}

// Link is a preprocessor <link> element located in a template.
// Start and End are byte offsets of the whole tag.
type Link struct {
	Start, End  int
	Href        string
	Attrs       []html.Attribute
	SelfClosing bool
}

// FindLinks returns every <link> whose type is text/sass or text/scss, in
// document order.
func FindLinks(tmpl string) ([]Link, error) {
	z := html.NewTokenizer(strings.NewReader(tmpl))
	var links []Link
	offset := 0

	for {
		tt := z.Next()
		raw := len(z.Raw())
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			return links, nil
		}

		start := offset
		offset += raw

		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		if tok.Data != "link" {
			continue
		}

		var typ, href string
		for _, a := range tok.Attr {
			switch a.Key {
			case "type":
				typ = strings.ToLower(strings.TrimSpace(a.Val))
			case "href":
				href = strings.TrimSpace(a.Val)
			}
		}
		if !preprocessorTypes[typ] {
			continue
		}
		links = append(links, Link{
			Start:       start,
			End:         offset,
			Href:        href,
			Attrs:       tok.Attr,
			SelfClosing: tt == html.SelfClosingTagToken,
		})
	}
}

// RewriteLink replaces the bytes of l in tmpl with a text/css link to href.
// Other attributes keep their order; the rest of tmpl is untouched.
func RewriteLink(tmpl string, l Link, href string) string {
	var b strings.Builder
	b.Grow(len(tmpl) + len(href))
	b.WriteString(tmpl[:l.Start])
	b.WriteString("<link")
	for _, a := range l.Attrs {
		val := a.Val
		switch a.Key {
		case "href":
			val = href
		case "type":
			val = "text/css"
		}
		b.WriteByte(' ')
		b.WriteString(a.Key)
		if val != "" || a.Key == "href" || a.Key == "type" {
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(val))
			b.WriteByte('"')
		}
	}
	if l.SelfClosing {
		b.WriteString(" />")
	} else {
		b.WriteByte('>')
	}
	b.WriteString(tmpl[l.End:])
	return b.String()
}
