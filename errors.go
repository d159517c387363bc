package md2site

import (
	"errors"
	"io/fs"

	"github.com/alnah/go-md2site/internal/assets"
	"github.com/alnah/go-md2site/internal/content"
	"github.com/alnah/go-md2site/internal/frontmatter"
	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/stylesheet"
)

// Sentinel errors for build operations. Aliases let callers classify
// failures with errors.Is without importing internal packages.
var (
	// Filesystem errors.
	ErrNotFound     = fs.ErrNotExist
	ErrPermission   = fs.ErrPermission
	ErrNotDirectory = content.ErrNotDirectory

	// Document errors.
	ErrInvalidFrontmatter    = frontmatter.ErrInvalidFrontmatter
	ErrTemplateNotFound      = assets.ErrTemplateNotFound
	ErrUnresolvedPlaceholder = pipeline.ErrUnresolvedPlaceholder
	ErrHTMLConversion        = pipeline.ErrHTMLConversion

	// Stylesheet errors.
	ErrCompilation         = stylesheet.ErrCompilation
	ErrMultipleStylesheets = stylesheet.ErrMultipleStylesheets
	ErrCompilerUnavailable = stylesheet.ErrCompilerUnavailable
	ErrInvalidMode         = stylesheet.ErrInvalidMode

	// ErrStylesheetCollision indicates two stylesheet sources compile to the
	// same CSS file.
	ErrStylesheetCollision = stylesheet.ErrOutputCollision

	// ErrOutputCollision indicates two posts resolve to the same page path,
	// or a post claims the listing page.
	ErrOutputCollision = errors.New("page output collision")

	// ErrDiscovery wraps failures to walk the posts root.
	ErrDiscovery = errors.New("locating posts")

	// Build errors.
	ErrInvalidLayout = errors.New("invalid layout")
	ErrInvalidOption = errors.New("invalid option")
	ErrBuildFailed   = errors.New("build failed")
)
