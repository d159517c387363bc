// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForSassUnavailable returns hints for a Dart Sass executable that could
// not be started.
func ForSassUnavailable() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	// The npm "sass" package is pure JS and has no embedded protocol.
	if inCI || IsInContainer() {
		hints = append(hints, "install the standalone Dart Sass release, not the npm package")
	}

	if os.Getenv("DART_SASS_BIN") == "" {
		hints = append(hints, "set DART_SASS_BIN or --sass-bin to the sass executable")
	}

	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and creating a config in the user config directory.
func ForConfigNotFound(name string) string {
	hint := "use --config /path/to/site.yaml"

	if dir, err := os.UserConfigDir(); err == nil && name != "" && filepath.Base(name) == name {
		hint += " or create " + filepath.Join(dir, "go-md2site", name+".yaml")
	}

	return format(hint)
}

// ForPostsRoot returns hints for a missing posts directory.
func ForPostsRoot() string {
	return format("pass the posts directory as an argument, --posts or POSTS_ROOT")
}

// ForPostsUnreadable returns hints for posts that cannot be read.
func ForPostsUnreadable() string {
	return format("check the posts directory and its subdirectories are readable")
}

// ForTemplateNotFound returns hints for a template missing from the
// template root.
func ForTemplateNotFound(root string) string {
	if root == "" {
		return format("only _base.html and _index.html are built in; set --templates or TEMPLATE_DIR")
	}
	return format("templates resolve under " + root + "; check the frontmatter template key")
}

// ForFrontmatter returns a hint describing the expected frontmatter block.
func ForFrontmatter() string {
	return format("posts start with ---, then title, description and template keys, then ---")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
