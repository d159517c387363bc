// Package config loads build settings from a YAML file, a .env file, and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alnah/go-md2site/internal/dateutil"
	"github.com/alnah/go-md2site/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength  = 4096 // PATH_MAX on Linux
	MaxTitleLength = 200  // Site title
	MaxTextLength  = 500  // Site description
	MaxURLLength   = 2048 // Browser limit
	MaxNameLength  = 100  // Author name
	MaxWorkers     = 32
)

// Environment variables read by ApplyEnv.
const (
	EnvPostsRoot   = "POSTS_ROOT"
	EnvTemplateDir = "TEMPLATE_DIR"
	EnvOutputDir   = "OUTPUT_DIR"
	EnvStyleRoot   = "STYLE_ROOT"
	EnvMode        = "MD2SITE_MODE"
	EnvNodeEnv     = "NODE_ENV" // fallback for EnvMode
	EnvSassBinary  = "DART_SASS_BIN"
)

// Layouts.
const (
	LayoutDirectory = "directory" // {out}/{name}/index.html
	LayoutFlat      = "flat"      // {out}/{name}.html
)

// Config holds all configuration for a site build.
type Config struct {
	Posts              string         `yaml:"posts"`
	Templates          string         `yaml:"templates"`
	Output             string         `yaml:"output"`
	StyleRoot          string         `yaml:"styleRoot"`
	Mode               string         `yaml:"mode"`   // "development" or "production"
	Layout             string         `yaml:"layout"` // "directory" or "flat"
	Workers            int            `yaml:"workers"`
	FailFast           bool           `yaml:"failFast"`
	Drafts             bool           `yaml:"drafts"`
	StrictPlaceholders bool           `yaml:"strictPlaceholders"`
	Extensions         []string       `yaml:"extensions"`
	Markdown           MarkdownConfig `yaml:"markdown"`
	Sass               SassConfig     `yaml:"sass"`
	Site               SiteConfig     `yaml:"site"`
}

// MarkdownConfig defines markdown rendering options.
type MarkdownConfig struct {
	UnsafeHTML bool `yaml:"unsafeHTML"` // Pass raw HTML through
	HardWraps  bool `yaml:"hardWraps"`  // Newlines become <br>
	Marks      bool `yaml:"marks"`      // ==text== becomes <mark>
}

// SassConfig defines the Dart Sass compiler.
type SassConfig struct {
	Binary string `yaml:"binary"` // Empty = "sass" from PATH
}

// SiteConfig defines the posts listing and feed.
type SiteConfig struct {
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	URL           string `yaml:"url"`           // Absolute base URL, required by the feed
	Author        string `yaml:"author"`        // Feed author
	IndexTemplate string `yaml:"indexTemplate"` // Empty = no listing page
	Feed          bool   `yaml:"feed"`          // Write rss.xml
	DateFormat    string `yaml:"dateFormat"`    // dateutil format or preset
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Posts:      "./posts",
		Templates:  "./tmpl",
		Output:     "./public",
		StyleRoot:  ".",
		Mode:       "development",
		Layout:     LayoutDirectory,
		Extensions: []string{".md", ".markdown"},
	}
}

// Validate checks values and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"posts", c.Posts, MaxPathLength},
		{"templates", c.Templates, MaxPathLength},
		{"output", c.Output, MaxPathLength},
		{"styleRoot", c.StyleRoot, MaxPathLength},
		{"sass.binary", c.Sass.Binary, MaxPathLength},
		{"site.title", c.Site.Title, MaxTitleLength},
		{"site.description", c.Site.Description, MaxTextLength},
		{"site.url", c.Site.URL, MaxURLLength},
		{"site.author", c.Site.Author, MaxNameLength},
		{"site.indexTemplate", c.Site.IndexTemplate, MaxPathLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Mode) {
	case "", "development", "dev", "production", "prod":
	default:
		return fmt.Errorf("%w: mode %q (must be development or production)", ErrInvalidValue, c.Mode)
	}

	switch c.Layout {
	case "", LayoutDirectory, LayoutFlat:
	default:
		return fmt.Errorf("%w: layout %q (must be %s or %s)", ErrInvalidValue, c.Layout, LayoutDirectory, LayoutFlat)
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}

	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%w: extensions[%d] %q must start with a dot", ErrInvalidValue, i, ext)
		}
	}

	if c.Site.URL != "" {
		u, err := url.Parse(c.Site.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: site.url %q must be an absolute http(s) URL", ErrInvalidValue, c.Site.URL)
		}
	}
	if c.Site.Feed && c.Site.URL == "" {
		return fmt.Errorf("%w: site.url is required when site.feed is enabled", ErrInvalidValue)
	}
	if c.Site.DateFormat != "" {
		if _, err := dateutil.FormatDate(time.Time{}, c.Site.DateFormat); err != nil {
			return fmt.Errorf("site.dateFormat: %w", err)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// ApplyEnv overrides paths, mode and the Sass binary from environment
// variables. lookup is usually os.LookupEnv; empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.Posts, EnvPostsRoot)
	set(&c.Templates, EnvTemplateDir)
	set(&c.Output, EnvOutputDir)
	set(&c.StyleRoot, EnvStyleRoot)
	set(&c.Mode, EnvMode, EnvNodeEnv)
	set(&c.Sass.Binary, EnvSassBinary)
}

// LoadDotEnv loads variables from a .env file without overriding variables
// already set in the environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if !fileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys missing from the file keep their DefaultConfig values; unknown keys
// are rejected.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-md2site/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-md2site", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
