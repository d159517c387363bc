package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	flag "github.com/spf13/pflag"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/hints"
)

// runMain dispatches the command and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) > 0 {
		args = args[1:]
	}

	cmd, rest := "build", args
	if len(args) > 0 && isCommand(args[0]) {
		cmd, rest = args[0], args[1:]
	}

	switch cmd {
	case "version":
		fmt.Fprintf(env.Stdout, "md2site %s\n", Version)
		return ExitSuccess
	case "help":
		if !runHelp(rest, env) {
			return ExitUsage
		}
		return ExitSuccess
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	report, err := runBuild(ctx, rest, env)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "md2site: %v\n", err)
		return exitCodeFor(err)
	}
	return exitCodeForReport(report)
}

// isCommand reports whether arg names a subcommand.
func isCommand(arg string) bool {
	switch arg {
	case "build", "version", "help":
		return true
	}
	return false
}

// runBuild resolves configuration, runs one build and prints its summary.
func runBuild(ctx context.Context, args []string, env *Environment) (*md2site.Report, error) {
	flags, positional, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		return nil, err
	}

	cfg, err := resolveConfig(flags, positional, env)
	if err != nil {
		return nil, withHint(err, flags.common.config, "")
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	opts, err := builderOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	opts = append(opts, env.Options...)

	builder, err := md2site.NewBuilder(opts...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report, err := builder.Build(ctx)
	if report != nil {
		printReport(env.Stdout, report, flags.common.quiet, flags.common.verbose, time.Since(start))
	}
	if err == nil && exitCodeForReport(report) == ExitCompiler {
		fmt.Fprintf(env.Stderr, "md2site: stylesheets not compiled%s\n", hints.ForSassUnavailable())
	}
	return report, withHint(err, flags.common.config, templateRoot(cfg))
}

// resolveConfig merges defaults, the config file, the environment and
// flags, in increasing priority.
func resolveConfig(flags *buildFlags, positional []string, env *Environment) (*config.Config, error) {
	if env.LoadDotEnv != nil {
		if err := env.LoadDotEnv(flags.common.envFile); err != nil {
			return nil, err
		}
	}

	cfg := config.DefaultConfig()
	if flags.common.config != "" {
		var err error
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	if env.LookupEnv != nil {
		cfg.ApplyEnv(env.LookupEnv)
	}
	mergeFlags(flags, cfg)
	if len(positional) == 1 {
		cfg.Posts = positional[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags copies flags set on the command line into cfg.
func mergeFlags(flags *buildFlags, cfg *config.Config) {
	set := flags.changed
	if set["posts"] {
		cfg.Posts = flags.posts
	}
	if set["templates"] {
		cfg.Templates = flags.templates
	}
	if set["output"] {
		cfg.Output = flags.output
	}
	if set["style-root"] {
		cfg.StyleRoot = flags.styleRoot
	}
	if set["mode"] {
		cfg.Mode = flags.mode
	}
	if set["layout"] {
		cfg.Layout = flags.layout
	}
	if set["sass-bin"] {
		cfg.Sass.Binary = flags.sassBinary
	}
	if set["workers"] {
		cfg.Workers = flags.workers
	}
	if set["fail-fast"] {
		cfg.FailFast = flags.failFast
	}
	if set["drafts"] {
		cfg.Drafts = flags.drafts
	}
	if set["strict"] {
		cfg.StrictPlaceholders = flags.strict
	}
	if set["marks"] {
		cfg.Markdown.Marks = flags.marks
	}
	if set["unsafe-html"] {
		cfg.Markdown.UnsafeHTML = flags.unsafeHTML
	}
}

// builderOptions converts cfg into builder options.
func builderOptions(cfg *config.Config, logger *slog.Logger) ([]md2site.Option, error) {
	mode, err := md2site.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	layout, err := md2site.ParseLayout(cfg.Layout)
	if err != nil {
		return nil, err
	}

	return []md2site.Option{
		md2site.WithPostsRoot(cfg.Posts),
		md2site.WithTemplateRoot(templateRoot(cfg)),
		md2site.WithOutputDir(cfg.Output),
		md2site.WithStyleRoot(cfg.StyleRoot),
		md2site.WithMode(mode),
		md2site.WithLayout(layout),
		md2site.WithWorkers(cfg.Workers),
		md2site.WithFailFast(cfg.FailFast),
		md2site.WithDrafts(cfg.Drafts),
		md2site.WithStrictPlaceholders(cfg.StrictPlaceholders),
		md2site.WithExtensions(cfg.Extensions...),
		md2site.WithSassBinary(cfg.Sass.Binary),
		md2site.WithRenderConfig(md2site.RenderConfig{
			UnsafeHTML: cfg.Markdown.UnsafeHTML,
			HardWraps:  cfg.Markdown.HardWraps,
			Marks:      cfg.Markdown.Marks,
		}),
		md2site.WithSite(md2site.Site{
			Title:         cfg.Site.Title,
			Description:   cfg.Site.Description,
			URL:           cfg.Site.URL,
			Author:        cfg.Site.Author,
			IndexTemplate: cfg.Site.IndexTemplate,
			Feed:          cfg.Site.Feed,
			DateFormat:    cfg.Site.DateFormat,
		}),
		md2site.WithLogger(logger),
	}, nil
}

// templateRoot returns the template root to use. A missing default root
// falls back to the built-in templates.
func templateRoot(cfg *config.Config) string {
	if cfg.Templates == config.DefaultConfig().Templates && !fileutil.DirExists(cfg.Templates) {
		return ""
	}
	return cfg.Templates
}

// newLogger writes structured logs to w. Warnings and document failures
// are shown by default.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// printReport outputs build results. Failures are already logged.
func printReport(w io.Writer, report *md2site.Report, quiet, verbose bool, elapsed time.Duration) {
	if quiet {
		return
	}

	for _, r := range report.Results {
		switch {
		case r.Status == md2site.StatusWritten && verbose:
			fmt.Fprintf(w, "%s -> %s (%v)\n", r.Source, r.OutputPath, r.Duration.Round(time.Millisecond))
		case r.Status == md2site.StatusWritten:
			fmt.Fprintf(w, "Created %s\n", r.OutputPath)
		case r.Status == md2site.StatusSkipped && verbose:
			fmt.Fprintf(w, "Skipped draft %s\n", r.Source)
		}
	}
	for _, css := range report.Stylesheets {
		fmt.Fprintf(w, "Compiled %s\n", css.OutputPath)
	}
	if report.IndexPath != "" {
		fmt.Fprintf(w, "Created %s\n", report.IndexPath)
	}
	if report.FeedPath != "" {
		fmt.Fprintf(w, "Created %s\n", report.FeedPath)
	}

	fmt.Fprintf(w, "\n%d written, %d skipped, %d failed", report.Written(), report.Skipped(), report.Failed())
	if n := len(report.Warnings); n > 0 {
		fmt.Fprintf(w, ", %d warnings", n)
	}
	if verbose {
		fmt.Fprintf(w, " in %v", elapsed.Round(time.Millisecond))
	}
	fmt.Fprintln(w)
}
