package stylesheet

import (
	"fmt"
	"strings"
)

// Mode selects how stylesheets are emitted.
type Mode string

const (
	// ModeDevelopment emits expanded CSS with a source map.
	ModeDevelopment Mode = "development"
	// ModeProduction emits compressed CSS without a source map.
	ModeProduction Mode = "production"
)

// DefaultMode is used when no mode is configured.
const DefaultMode = ModeDevelopment

// ParseMode accepts "development"/"dev" and "production"/"prod",
// case-insensitive. Empty input yields DefaultMode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultMode, nil
	case "development", "dev":
		return ModeDevelopment, nil
	case "production", "prod":
		return ModeProduction, nil
	default:
		return "", fmt.Errorf("%w: %q (use development or production)", ErrInvalidMode, s)
	}
}

// SourceMaps reports whether the mode emits source maps.
func (m Mode) SourceMaps() bool { return m != ModeProduction }

// Compressed reports whether the mode compresses output.
func (m Mode) Compressed() bool { return m == ModeProduction }
