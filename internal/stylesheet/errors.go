package stylesheet

import "errors"

// Sentinel errors for stylesheet compilation.
var (
	// ErrCompilation wraps every failure to turn a preprocessor source into CSS.
	ErrCompilation = errors.New("stylesheet compilation failed")

	// ErrMultipleStylesheets indicates a template references more than one
	// preprocessor stylesheet.
	ErrMultipleStylesheets = errors.New("multiple preprocessor stylesheets in template")

	// ErrOutputCollision indicates two different sources compile to the same
	// CSS file.
	ErrOutputCollision = errors.New("stylesheet output collision")

	// ErrCompilerUnavailable indicates the Dart Sass binary could not be started.
	ErrCompilerUnavailable = errors.New("sass compiler unavailable")

	// ErrInvalidMode indicates an unknown build mode.
	ErrInvalidMode = errors.New("invalid build mode")

	// ErrUnsupportedSource indicates a stylesheet href that is remote or has
	// an unknown extension.
	ErrUnsupportedSource = errors.New("unsupported stylesheet source")
)
