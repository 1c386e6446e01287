package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"jira/internal/app"
	"jira/internal/commands"
	"jira/internal/config"
	"jira/internal/dispatch"
	"jira/internal/logging"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

const (
	summary = "Work with Jira issues and projects from the terminal"
	long    = `jira lists, creates, and moves issues through their workflow.

Configuration is read from ~/.config/jira/config.toml, then ./jira.toml,
with JIRA_SERVER, JIRA_USERNAME, JIRA_API_TOKEN, and JIRA_PROJECT as
fallbacks. Run "jira config init" to write a starter file.`
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// globalFlags holds the root flags needed before the command tree exists.
type globalFlags struct {
	config  string
	verbose bool
}

// scanGlobals picks --config and --verbose out of args without failing on
// the action flags the bound tree will parse later.
func scanGlobals(args []string) globalFlags {
	var g globalFlags
	flags := pflag.NewFlagSet("jira", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.ParseErrorsAllowlist.UnknownFlags = true
	flags.Usage = func() {}
	flags.StringVarP(&g.config, dispatch.FlagConfig, "c", "", "")
	flags.BoolVarP(&g.verbose, dispatch.FlagVerbose, "v", false, "")
	flags.BoolP("help", "h", false, "")
	_ = flags.Parse(args)
	return g
}

// pluginFS returns the configured manifest directory, or nil when unset.
func pluginFS(cfg *config.Config) fs.FS {
	if cfg.Plugins.Dir == "" {
		return nil
	}
	return os.DirFS(cfg.Plugins.Dir)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	globals := scanGlobals(args)

	cfg, path, exists, err := config.Load(globals.config)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	levelVar := new(slog.LevelVar)
	logger, closer, err := logging.NewFromConfig(cfg, levelVar, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()
	if globals.verbose {
		levelVar.Set(slog.LevelDebug)
	}

	env := app.New(cfg, logger, app.WithConfigSource(path, exists))
	defer func() {
		if err := env.Close(); err != nil {
			logger.Debug("close failed", logging.Error(err))
		}
	}()

	reg := dispatch.Discover(commands.Roots(pluginFS(cfg), cfg.Plugins.Dir), commands.Catalog(env), logger)
	binder := dispatch.NewBinder(
		dispatch.WithProgram("jira", summary, long),
		dispatch.WithVersion(version),
		dispatch.WithBinderLogger(logger),
	)
	d := dispatch.New(reg, binder,
		dispatch.WithLogger(logger),
		dispatch.WithLevelVar(levelVar),
		dispatch.WithOutput(stdout, stderr),
		dispatch.WithInput(stdin),
	)
	return d.Run(ctx, args)
}
