package assets

import "errors"

// Sentinel errors for template loading.
var (
	// ErrTemplateNotFound indicates the requested template does not exist.
	// Errors carrying it also wrap fs.ErrNotExist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidTemplateName indicates the name is empty, absolute, or
	// contains traversal segments.
	ErrInvalidTemplateName = errors.New("invalid template name")

	// ErrInvalidBasePath indicates the configured template root is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading a template file.
	ErrAssetRead = errors.New("failed to read template")

	// ErrPathTraversal indicates an attempt to access files outside the template root.
	ErrPathTraversal = errors.New("path traversal detected")
)
