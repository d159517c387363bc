package assets

// defaultLoader serves the built-in templates.
var defaultLoader = NewEmbeddedLoader()

// LoadTemplate loads a built-in template by name using the default
// embedded loader.
// Returns ErrTemplateNotFound if no built-in template has that name.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
