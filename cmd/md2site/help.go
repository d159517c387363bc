package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site [command] [flags] [posts-dir]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Build the site (default)")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2site help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site build [posts-dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render markdown posts into HTML pages and compile the templates' stylesheet.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  posts-dir    Posts root (default ./posts, env POSTS_ROOT)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Paths:")
	fmt.Fprintln(w, "      --posts <dir>         Posts root")
	fmt.Fprintln(w, "      --templates <dir>     Template root (default ./tmpl, env TEMPLATE_DIR)")
	fmt.Fprintln(w, "  -o, --output <dir>        Output root (default ./public, env OUTPUT_DIR)")
	fmt.Fprintln(w, "      --style-root <dir>    Base for stylesheet hrefs (default ., env STYLE_ROOT)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build:")
	fmt.Fprintln(w, "  -m, --mode <s>            development or production (env MD2SITE_MODE, NODE_ENV)")
	fmt.Fprintln(w, "      --layout <s>          directory ({name}/index.html) or flat ({name}.html)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --fail-fast           Stop at the first failing post")
	fmt.Fprintln(w, "      --drafts              Build draft posts (never listed)")
	fmt.Fprintln(w, "      --strict              Fail posts with unresolved placeholders")
	fmt.Fprintln(w, "      --sass-bin <path>     Dart Sass executable (env DART_SASS_BIN)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Markdown:")
	fmt.Fprintln(w, "      --marks               Render ==text== as <mark>")
	fmt.Fprintln(w, "      --unsafe-html         Keep raw HTML from markdown")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --env-file <path>     Dotenv file (default .env)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 some posts failed, 2 usage, 3 I/O, 4 sass unavailable.")
}

// runHelp prints help for a specific command. Returns false for an
// unknown command.
func runHelp(args []string, env *Environment) bool {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return true
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2site version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2site help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return false
	}
	return true
}
