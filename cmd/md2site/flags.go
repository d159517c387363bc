package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage wraps flag parsing and argument errors.
var ErrUsage = errors.New("usage error")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	envFile string
	quiet   bool
	verbose bool
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common     commonFlags
	posts      string
	templates  string
	output     string
	styleRoot  string
	mode       string
	layout     string
	sassBinary string
	workers    int
	failFast   bool
	drafts     bool
	strict     bool
	marks      bool
	unsafeHTML bool

	// changed records flags set on the command line; only those override
	// environment variables and the config file.
	changed map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// parseBuildFlags parses build command arguments. The optional positional
// argument is the posts root.
func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, []string, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &buildFlags{}

	fs.StringVar(&f.posts, "posts", "", "posts root directory")
	fs.StringVar(&f.templates, "templates", "", "template root directory")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.styleRoot, "style-root", "", "directory stylesheet hrefs resolve against")
	fs.StringVarP(&f.mode, "mode", "m", "", "build mode: development or production")
	fs.StringVar(&f.layout, "layout", "", "output layout: directory or flat")
	fs.StringVar(&f.sassBinary, "sass-bin", "", "Dart Sass executable")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.failFast, "fail-fast", false, "stop at the first failing post")
	fs.BoolVar(&f.drafts, "drafts", false, "build draft posts")
	fs.BoolVar(&f.strict, "strict", false, "fail posts with unresolved placeholders")
	fs.BoolVar(&f.marks, "marks", false, "render ==text== as <mark>")
	fs.BoolVar(&f.unsafeHTML, "unsafe-html", false, "pass raw HTML in markdown through")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printBuildUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	f.changed = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.changed[fl.Name] = true })

	positional := fs.Args()
	if len(positional) > 1 {
		return nil, nil, fmt.Errorf("%w: expected at most one posts directory, got %d arguments", ErrUsage, len(positional))
	}
	return f, positional, nil
}
