// Package cmd implements the CLI command structure for clarity.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/clarity-go/internal/config"
	"github.com/nibzard/clarity-go/internal/storage"
	"github.com/nibzard/clarity-go/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries what every command needs.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	out     io.Writer
	errOut  io.Writer
	logger  *log.Logger
}

// Run executes the clarity CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("clarity", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	a := &app{
		cfg:     cws.Config,
		sources: cws,
		out:     stdout,
		errOut:  stderr,
		logger:  cws.Config.NewLogger(stderr),
	}

	// Determine the subcommand. With no args, list tasks.
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "add":
		return a.addCommand(ctx, remainingArgs)
	case "ls", "list":
		return a.lsCommand(ctx, remainingArgs)
	case "toggle", "done":
		return a.toggleCommand(ctx, remainingArgs)
	case "edit":
		return a.editCommand(ctx, remainingArgs)
	case "rm", "delete":
		return a.rmCommand(ctx, remainingArgs)
	case "clear":
		return a.clearCommand(ctx, remainingArgs)
	case "filter":
		return a.filterCommand(ctx, remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "export":
		return a.exportCommand(ctx, remainingArgs)
	case "import":
		return a.importCommand(ctx, remainingArgs)
	case "doctor":
		return a.doctorCommand(ctx, remainingArgs)
	case "reset":
		return a.resetCommand(ctx, remainingArgs)
	case "config":
		return a.configCommand(remainingArgs)
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openStore opens the configured slot and loads the task list. The returned
// close func releases both.
func (a *app) openStore(ctx context.Context) (*store.Store, func(), error) {
	slot, err := storage.Open(ctx, a.cfg.StorageConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s storage: %w", a.cfg.Backend, err)
	}

	s := store.New(slot,
		store.WithNamespace(a.cfg.Namespace),
		store.WithLogger(a.logger),
		store.WithValidation(a.cfg.Validate),
	)
	if err := s.Init(ctx); err != nil {
		slot.Close()
		return nil, nil, err
	}
	a.logger.Debug("opened task list", "backend", a.cfg.Backend, "data_dir", a.cfg.DataDir, "namespace", a.cfg.Namespace)

	closeFn := func() {
		s.Close()
		if err := slot.Close(); err != nil {
			a.logger.Warn("closing storage", "err", err)
		}
	}
	return s, closeFn, nil
}

// checkSaved turns a failed write into an error. A one-shot command that
// could not save has lost its change.
func checkSaved(s *store.Store) error {
	if err := s.LastPersistError(); err != nil {
		return fmt.Errorf("change was not saved: %w", err)
	}
	return nil
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "clarity version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Clarity - a minimal task list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  clarity [global options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  ls [-filter f] [-a]       List tasks (default command)")
	fmt.Fprintln(w, "  add <text...>             Add a task to the top of the list")
	fmt.Fprintln(w, "  toggle <ref>              Toggle a task done/active (alias: done)")
	fmt.Fprintln(w, "  edit <ref> <text...>      Replace a task's text")
	fmt.Fprintln(w, "  rm <ref>                  Delete a task")
	fmt.Fprintln(w, "  clear                     Delete all completed tasks")
	fmt.Fprintln(w, "  filter [all|active|completed]  Show or set the view filter")
	fmt.Fprintln(w, "  tui                       Launch terminal UI")
	fmt.Fprintln(w, "  export [-format f] [-o file]   Write the task list as json, yaml or toml")
	fmt.Fprintln(w, "  import [-format f] <file>      Replace the task list from a file")
	fmt.Fprintln(w, "  doctor [-v]               Check config, storage and stored data")
	fmt.Fprintln(w, "  reset -force              Delete the stored task list")
	fmt.Fprintln(w, "  config [-example]         Show effective config and where it came from")
	fmt.Fprintln(w, "  version                   Show version information")
	fmt.Fprintln(w, "  help                      Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A <ref> is a task id, a unique id prefix, or a position in the current view (1 = top).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
