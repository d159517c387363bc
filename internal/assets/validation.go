package assets

import (
	"fmt"
	"path"
	"strings"
)

// ValidateTemplateName checks that a template name is a relative,
// slash-separated path that stays inside the template root.
func ValidateTemplateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTemplateName)
	}
	if strings.ContainsAny(name, "\\\x00") || path.IsAbs(name) || isWindowsAbs(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTemplateName, name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidTemplateName, name)
		}
	}
	return nil
}

// isWindowsAbs catches drive-letter names like "C:x" on every platform.
func isWindowsAbs(name string) bool {
	return len(name) >= 2 && name[1] == ':'
}
