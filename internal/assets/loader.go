package assets

// Names of the built-in templates.
const (
	BaseTemplateName  = "_base.html"
	IndexTemplateName = "_index.html"
)

// TemplateLoader defines the contract for loading HTML page templates.
// Implementations may load from a directory, embedded assets, etc.
type TemplateLoader interface {
	// LoadTemplate loads a template by file name relative to the loader's
	// root, e.g. "_base.html" or "layouts/post.html".
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidTemplateName if the name could escape the root.
	LoadTemplate(name string) (string, error)
}
