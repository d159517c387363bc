// Package frontmatter splits a leading YAML block from a markdown document
// and validates it into a Record.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	adrg "github.com/adrg/frontmatter"

	"github.com/alnah/go-md2site/internal/dateutil"
	"github.com/alnah/go-md2site/internal/yamlutil"
)

// ErrInvalidFrontmatter is wrapped by every ValidationError.
var ErrInvalidFrontmatter = errors.New("invalid frontmatter")

// Field names with dedicated Record fields. Anything else lands in Extra.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldTemplate    = "template"
	FieldAuthor      = "author"
	FieldCanonical   = "canonical"
	FieldTags        = "tags"
	FieldDraft       = "draft"
	FieldPubDate     = "pubDate"
	FieldDate        = "date"
)

// MaxFieldLength bounds string metadata values.
const MaxFieldLength = 1000

// Record is a validated frontmatter block plus the body that followed it.
type Record struct {
	Title       string
	Description string
	Template    string
	Author      string
	Canonical   string
	Tags        []string
	Draft       bool
	Date        time.Time // zero when absent
	Extra       map[string]string
	Body        string
}

// ValidationError names the document and field that failed validation.
type ValidationError struct {
	Path   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidFrontmatter, e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s %s", ErrInvalidFrontmatter, e.Path, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidFrontmatter }

// yamlFormat delimits frontmatter with "---" lines and decodes it with goccy/go-yaml.
var yamlFormat = adrg.NewFormat("---", "---", yamlutil.UnmarshalLenient)

// Split separates the leading "---" block from the body. A document without
// a block yields nil fields and the whole input as body.
func Split(raw []byte) (map[string]any, string, error) {
	var fields map[string]any
	rest, err := adrg.Parse(bytes.NewReader(raw), &fields, yamlFormat)
	if err != nil {
		return nil, "", err
	}
	return fields, string(rest), nil
}

// Parse splits raw and validates the result. path is only used in errors.
func Parse(path string, raw []byte, requireTemplate bool) (Record, error) {
	fields, body, err := Split(raw)
	if err != nil {
		return Record{}, &ValidationError{Path: path, Reason: err.Error()}
	}
	return Validate(path, fields, body, requireTemplate)
}

// Validate turns decoded fields into a Record or reports the first offending
// field. title and description must be non-empty strings; template is
// required when requireTemplate is set.
func Validate(path string, fields map[string]any, body string, requireTemplate bool) (Record, error) {
	invalid := func(field, reason string) (Record, error) {
		return Record{}, &ValidationError{Path: path, Field: field, Reason: reason}
	}

	rec := Record{Body: body}
	var err error

	if rec.Title, err = requiredString(fields, FieldTitle); err != nil {
		return invalid(FieldTitle, err.Error())
	}
	if rec.Description, err = requiredString(fields, FieldDescription); err != nil {
		return invalid(FieldDescription, err.Error())
	}
	if requireTemplate {
		if rec.Template, err = requiredString(fields, FieldTemplate); err != nil {
			return invalid(FieldTemplate, err.Error())
		}
	} else if rec.Template, err = optionalString(fields, FieldTemplate); err != nil {
		return invalid(FieldTemplate, err.Error())
	}
	if rec.Author, err = optionalString(fields, FieldAuthor); err != nil {
		return invalid(FieldAuthor, err.Error())
	}
	if rec.Canonical, err = optionalString(fields, FieldCanonical); err != nil {
		return invalid(FieldCanonical, err.Error())
	}
	if rec.Tags, err = tags(fields[FieldTags]); err != nil {
		return invalid(FieldTags, err.Error())
	}

	if v, ok := fields[FieldDraft]; ok && v != nil {
		b, isBool := v.(bool)
		if !isBool {
			return invalid(FieldDraft, fmt.Sprintf("must be a boolean, got %T", v))
		}
		rec.Draft = b
	}

	dateField := FieldPubDate
	raw, ok := fields[FieldPubDate]
	if !ok {
		dateField = FieldDate
		raw, ok = fields[FieldDate]
	}
	if ok && raw != nil {
		if rec.Date, err = dateutil.ParseDate(raw); err != nil {
			return invalid(dateField, err.Error())
		}
	}

	rec.Extra = extra(fields)
	return rec, nil
}

func requiredString(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", errors.New("is required")
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("must be a string, got %T", v)
	}
	if strings.TrimSpace(s) == "" {
		return "", errors.New("cannot be empty")
	}
	if len(s) > MaxFieldLength {
		return "", fmt.Errorf("exceeds %d characters", MaxFieldLength)
	}
	return s, nil
}

func optionalString(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("must be a string, got %T", v)
	}
	if len(s) > MaxFieldLength {
		return "", fmt.Errorf("exceeds %d characters", MaxFieldLength)
	}
	return s, nil
}

// tags accepts a sequence of strings or a single string.
func tags(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d must be a string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return append([]string(nil), t...), nil
	default:
		return nil, fmt.Errorf("must be a list of strings, got %T", v)
	}
}

var knownFields = map[string]bool{
	FieldTitle: true, FieldDescription: true, FieldTemplate: true,
	FieldAuthor: true, FieldCanonical: true, FieldTags: true,
	FieldDraft: true, FieldPubDate: true, FieldDate: true,
}

// extra stringifies remaining scalar fields. Maps and sequences are skipped.
func extra(fields map[string]any) map[string]string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !knownFields[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		switch v := fields[k].(type) {
		case nil, map[string]any, []any:
			continue
		case string:
			out[k] = v
		case time.Time:
			out[k] = v.Format(time.RFC3339)
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}
