package pipeline

import (
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LinkResolver maps a post name (file base name without extension) to the
// href of its rendered page. ok is false for names that are not built.
type LinkResolver func(name string) (href string, ok bool)

// RewritePostLinks turns relative anchors to markdown sources
// (<a href="other-post.md#intro">) into links to the rendered pages.
// Fragments without such links are returned byte-for-byte.
//
// Does NOT rewrite:
//   - img, script, or any non-anchor element
//   - absolute paths or URLs
//   - links to names the resolver does not know
func RewritePostLinks(fragment string, resolve LinkResolver) (string, error) {
	if resolve == nil || !mayLinkPost(fragment) {
		return fragment, nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	})
	if err != nil {
		return "", err
	}

	changed := false
	for _, n := range nodes {
		if rewriteNode(n, resolve) {
			changed = true
		}
	}
	if !changed {
		return fragment, nil
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// mayLinkPost reports whether fragment can contain a markdown source link.
func mayLinkPost(fragment string) bool {
	lower := strings.ToLower(fragment)
	return strings.Contains(lower, ".md") || strings.Contains(lower, ".markdown")
}

func rewriteNode(n *html.Node, resolve LinkResolver) bool {
	changed := false
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		for i, attr := range n.Attr {
			if attr.Key != "href" {
				continue
			}
			if href, ok := postHref(attr.Val, resolve); ok {
				n.Attr[i].Val = href
				changed = true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if rewriteNode(c, resolve) {
			changed = true
		}
	}
	return changed
}

// postHref resolves "dir/name.md#frag" to the page href plus fragment.
func postHref(val string, resolve LinkResolver) (string, bool) {
	if !isRelativePath(val) {
		return "", false
	}
	target, frag, _ := strings.Cut(val, "#")
	ext := strings.ToLower(path.Ext(target))
	if ext != ".md" && ext != ".markdown" {
		return "", false
	}
	name := strings.TrimSuffix(path.Base(target), path.Ext(target))
	href, ok := resolve(name)
	if !ok {
		return "", false
	}
	if frag != "" {
		href += "#" + frag
	}
	return href, true
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(p string) bool {
	if p == "" {
		return false
	}
	if strings.HasPrefix(p, "http://") ||
		strings.HasPrefix(p, "https://") ||
		strings.HasPrefix(p, "file://") ||
		strings.HasPrefix(p, "data:") ||
		strings.HasPrefix(p, "mailto:") ||
		strings.HasPrefix(p, "//") {
		return false
	}
	if strings.HasPrefix(p, "#") || strings.HasPrefix(p, "/") {
		return false
	}
	return true
}
