package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nibzard/clarity-go/internal/config"
	"github.com/nibzard/clarity-go/internal/storage"
	"github.com/nibzard/clarity-go/internal/todo"
)

// doctorCommand checks config, storage and the stored snapshot.
func (a *app) doctorCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("doctor")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := a.out
	cfg := a.cfg

	fmt.Fprintln(w, "Clarity Doctor")
	fmt.Fprintln(w, "==============")
	fmt.Fprintln(w)

	allOK := true

	// Config
	fmt.Fprintln(w, "Config:")
	if file := a.sources.ConfigFile(); file != "" {
		fmt.Fprintf(w, "  ✅ Config file: %s\n", file)
	} else {
		fmt.Fprintln(w, "  ✅ Config file: none (using defaults)")
	}
	fmt.Fprintf(w, "  ✅ Backend: %s\n", cfg.Backend)
	fmt.Fprintf(w, "  ✅ Namespace: %s\n", cfg.Namespace)
	if *verbose {
		for _, kv := range cfg.Fields() {
			fmt.Fprintf(w, "     %s = %s (%s)\n", kv[0], kv[1], a.sources.Sources[kv[0]])
		}
	}
	fmt.Fprintln(w)

	// Data directory
	if cfg.Backend != storage.BackendMemory {
		fmt.Fprintf(w, "Data directory: %s\n", cfg.DataDir)
		info, err := os.Stat(cfg.DataDir)
		switch {
		case errors.Is(err, os.ErrNotExist):
			fmt.Fprintln(w, "  ⚠️  Not found (will be created on first save)")
		case err != nil:
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		case !info.IsDir():
			fmt.Fprintln(w, "  ❌ Error: path is not a directory")
			allOK = false
		default:
			fmt.Fprintln(w, "  ✅ OK")
		}
		fmt.Fprintln(w)
	}

	// Stored snapshot
	fmt.Fprintln(w, "Task list:")
	if !a.checkSnapshot(ctx, *verbose) {
		allOK = false
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed. Clarity may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkSnapshot validates the stored snapshot directly, bypassing the store,
// so every schema error is reported rather than the first.
func (a *app) checkSnapshot(ctx context.Context, verbose bool) bool {
	w := a.out

	slot, err := storage.Open(ctx, a.cfg.StorageConfig())
	if err != nil {
		fmt.Fprintf(w, "  ❌ Storage: %v\n", err)
		return false
	}
	defer slot.Close()
	fmt.Fprintln(w, "  ✅ Storage opened")

	data, err := slot.Load(ctx, a.cfg.Namespace)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintln(w, "  ⚠️  Nothing stored yet (starts empty)")
		return true
	}
	if err != nil {
		fmt.Fprintf(w, "  ❌ Load error: %v\n", err)
		return false
	}

	result := todo.Validate(data, todo.ValidationOptions{})
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	if !result.Valid {
		fmt.Fprintln(w, "  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "     - %v\n", e)
		}
		return false
	}
	if result.UsedSchema {
		fmt.Fprintln(w, "  ✅ Valid (schema)")
	} else {
		fmt.Fprintln(w, "  ✅ Valid")
	}

	state, err := todo.Decode(data)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Decode error: %v\n", err)
		return false
	}
	counts := todo.CountTasks(state.Tasks)
	fmt.Fprintf(w, "  Tasks: %d (%d active, %d completed), filter: %s\n", counts.Total, counts.Active, counts.Completed, state.Filter)
	if st, ok := slot.(storage.Stamper); ok {
		if at, err := st.UpdatedAt(ctx, a.cfg.Namespace); err == nil {
			fmt.Fprintf(w, "  Last saved: %s\n", at.Local().Format(time.RFC3339))
		}
	}
	if verbose {
		for i, t := range state.Tasks {
			printTask(w, i+1, t, true)
		}
	}
	return true
}

// resetCommand deletes the stored task list. It opens the slot directly so
// a snapshot that no longer loads can still be removed.
func (a *app) resetCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("reset")
	force := fs.Bool("force", false, "Confirm permanently deleting every task")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if !*force {
		return fmt.Errorf("reset permanently deletes every task in %q; rerun with -force", a.cfg.Namespace)
	}

	slot, err := storage.Open(ctx, a.cfg.StorageConfig())
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", a.cfg.Backend, err)
	}
	defer slot.Close()

	if err := slot.Remove(ctx, a.cfg.Namespace); err != nil {
		return fmt.Errorf("removing task list: %w", err)
	}
	a.logger.Debug("removed task list", "backend", a.cfg.Backend, "namespace", a.cfg.Namespace)
	fmt.Fprintf(a.out, "Removed task list %s.\n", a.cfg.Namespace)
	return nil
}

// configCommand prints the effective config with the source of each value.
func (a *app) configCommand(args []string) error {
	fs := a.newFlagSet("config")
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(a.out, config.ExampleConfig())
		return nil
	}
	for _, kv := range a.cfg.Fields() {
		fmt.Fprintf(a.out, "%-15s %-40s %s\n", kv[0], kv[1], a.sources.Sources[kv[0]])
	}
	return nil
}
