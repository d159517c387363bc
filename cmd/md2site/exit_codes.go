package main

import (
	"errors"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
)

// Exit codes for the md2site CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Every post written
	ExitGeneral  = 1 // Unexpected error or some posts failed
	ExitUsage    = 2 // Invalid flags, config, or options
	ExitIO       = 3 // File not found, permission denied
	ExitCompiler = 4 // Sass compiler could not be started
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Compiler errors (exit 4)
	if errors.Is(err, md2site.ErrCompilerUnavailable) {
		return ExitCompiler
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, md2site.ErrInvalidMode) ||
		errors.Is(err, md2site.ErrInvalidLayout) ||
		errors.Is(err, md2site.ErrInvalidOption) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, md2site.ErrNotFound) ||
		errors.Is(err, md2site.ErrPermission) ||
		errors.Is(err, md2site.ErrNotDirectory) {
		return ExitIO
	}

	return ExitGeneral
}

// exitCodeForReport classifies a build that returned no error.
func exitCodeForReport(report *md2site.Report) int {
	if report.Failed() > 0 {
		return ExitGeneral
	}
	for _, w := range report.Warnings {
		if errors.Is(w.Err, md2site.ErrCompilerUnavailable) {
			return ExitCompiler
		}
	}
	return ExitSuccess
}
