package assets

import (
	"errors"
)

// TemplateResolver combines the template root and the built-in templates.
// When a template root is configured, it is tried first; the built-ins are
// consulted only when the name is not found there.
type TemplateResolver struct {
	custom   TemplateLoader // nil if no template root configured
	embedded TemplateLoader
}

// NewTemplateResolver creates a TemplateResolver.
// If root is empty, only built-in templates are used.
// Returns error if root is set but invalid.
func NewTemplateResolver(root string) (*TemplateResolver, error) {
	resolver := &TemplateResolver{
		embedded: NewEmbeddedLoader(),
	}

	if root != "" {
		fsLoader, err := NewFilesystemLoader(root)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadTemplate loads a template, trying the template root first.
func (r *TemplateResolver) LoadTemplate(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadTemplate(name)
	}

	content, err := r.custom.LoadTemplate(name)
	if err == nil {
		return content, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors.
	if !errors.Is(err, ErrTemplateNotFound) {
		return "", err
	}

	if builtin, embErr := r.embedded.LoadTemplate(name); embErr == nil {
		return builtin, nil
	}
	// Report the template root miss; it names the path the user expected.
	return "", err
}

// HasCustomLoader returns true if a template root is configured.
func (r *TemplateResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ TemplateLoader = (*TemplateResolver)(nil)
