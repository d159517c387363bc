// Package assets loads the HTML templates pages are rendered into.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	TemplateLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in _base.html and _index.html
//	    ├── FilesystemLoader  - loads from the template root on disk
//	    └── TemplateResolver  - combines both with root-first fallback
//
// TemplateResolver is the loader used by the builder. It tries the
// FilesystemLoader first and falls back to the built-in templates only when
// the name is not found, so a site can override _base.html while a bare
// posts directory still builds.
//
// # Security
//
// Template names may contain sub-directories but never ".." segments or
// absolute paths. FilesystemLoader additionally resolves symlinks and
// verifies the final path stays within the template root.
package assets
