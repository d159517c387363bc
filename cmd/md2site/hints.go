package main

import (
	"errors"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/hints"
)

// hintedError appends an actionable hint to an error message.
type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() + e.hint }
func (e *hintedError) Unwrap() error { return e.err }

// withHint attaches the hint matching err, if any. configName and
// templateRoot come from the resolved command line.
func withHint(err error, configName, templateRoot string) error {
	if err == nil {
		return nil
	}

	var hint string
	switch {
	case errors.Is(err, md2site.ErrCompilerUnavailable):
		hint = hints.ForSassUnavailable()
	case errors.Is(err, config.ErrConfigNotFound):
		hint = hints.ForConfigNotFound(configName)
	case errors.Is(err, md2site.ErrTemplateNotFound):
		hint = hints.ForTemplateNotFound(templateRoot)
	case errors.Is(err, md2site.ErrInvalidFrontmatter):
		hint = hints.ForFrontmatter()
	case errors.Is(err, md2site.ErrPermission):
		if readingPosts(err) {
			hint = hints.ForPostsUnreadable()
		} else {
			hint = hints.ForOutputDirectory()
		}
	case errors.Is(err, md2site.ErrNotFound), errors.Is(err, md2site.ErrNotDirectory):
		hint = hints.ForPostsRoot()
	}

	if hint == "" {
		return err
	}
	return &hintedError{err: err, hint: hint}
}

// readingPosts reports whether err happened while discovering or reading
// posts rather than while writing output.
func readingPosts(err error) bool {
	if errors.Is(err, md2site.ErrDiscovery) {
		return true
	}
	var docErr *md2site.DocumentError
	return errors.As(err, &docErr) && docErr.Stage == md2site.StageFrontmatterParsed
}
