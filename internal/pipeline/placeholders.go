package pipeline

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
)

// ErrUnresolvedPlaceholder indicates a template still holds a metadata
// placeholder after substitution.
var ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")

// BodyPlaceholder is the name of the placeholder replaced by the rendered body.
const BodyPlaceholder = "main"

// MetadataPlaceholders lists the placeholder names filled from a post's
// frontmatter. Extra frontmatter keys are recognized in addition.
var MetadataPlaceholders = []string{
	"title",
	"description",
	"author",
	"date",
	"tags",
	"canonical",
	"slug",
}

// placeholderPattern matches {{ name }} with optional inner spacing.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.-]*)\s*\}\}`)

// Placeholders maps placeholder names to raw (unescaped) values.
// Treat it as immutable.
type Placeholders map[string]string

// NewPlaceholders copies values, dropping empty values and the body name.
func NewPlaceholders(values map[string]string) Placeholders {
	p := make(Placeholders, len(values))
	for k, v := range values {
		if v == "" || k == BodyPlaceholder {
			continue
		}
		p[k] = v
	}
	return p
}

// SubstituteMetadata replaces every {{ name }} whose name has a value.
// Values are HTML-escaped. Placeholders without a value are left as-is.
func SubstituteMetadata(tmpl string, values Placeholders) string {
	if len(values) == 0 {
		return tmpl
	}
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := values[name]; ok {
			return escapeValue(v)
		}
		return match
	})
}

// SubstituteBody replaces the first {{ main }} with body, verbatim.
func SubstituteBody(tmpl, body string) string {
	loc := findBody(tmpl)
	if loc == nil {
		return tmpl
	}
	return tmpl[:loc[0]] + body + tmpl[loc[1]:]
}

// HasBodyPlaceholder reports whether tmpl contains {{ main }}.
func HasBodyPlaceholder(tmpl string) bool {
	return findBody(tmpl) != nil
}

func findBody(tmpl string) []int {
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(tmpl, -1) {
		if tmpl[m[2]:m[3]] == BodyPlaceholder {
			return m[:2]
		}
	}
	return nil
}

// UnresolvedPlaceholders returns the sorted, distinct names of placeholders
// left in tmpl, excluding the body placeholder.
func UnresolvedPlaceholders(tmpl string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		name := m[1]
		if name == BodyPlaceholder || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckResolved returns ErrUnresolvedPlaceholder naming every metadata
// placeholder still present in tmpl.
func CheckResolved(tmpl string) error {
	names := UnresolvedPlaceholders(tmpl)
	if len(names) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, strings.Join(names, ", "))
}

// escapeValue HTML-escapes v and neutralizes braces so a value can never
// form a new placeholder.
func escapeValue(v string) string {
	return strings.ReplaceAll(html.EscapeString(v), "{", "&#123;")
}
