package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nibzard/clarity-go/internal/todo"
	"github.com/nibzard/clarity-go/internal/ui"
)

// exportCommand writes the task list in the chosen format.
func (a *app) exportCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("export")
	formatName := fs.String("format", "", "Output format (json, yaml, toml); inferred from -o when empty")
	output := fs.String("o", "", "Write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	format, err := resolveFormat(*formatName, *output)
	if err != nil {
		return err
	}

	s, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	data, err := todo.Export(s.State(), format)
	if err != nil {
		return err
	}

	if *output == "" {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", *output, err)
	}
	fmt.Fprintf(a.errOut, "Exported %d tasks to %s\n", len(s.Tasks()), *output)
	return nil
}

// importCommand replaces the task list with the contents of a file.
func (a *app) importCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("import")
	formatName := fs.String("format", "", "Input format (json, yaml, toml); inferred from the file extension when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: clarity import [-format f] <file>")
	}
	path := fs.Arg(0)

	format, err := resolveFormat(*formatName, path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	state, err := todo.Import(data, format)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}

	s, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := s.Replace(state); err != nil {
		return err
	}
	if err := checkSaved(s); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %d tasks from %s\n", len(state.Tasks), path)
	return nil
}

// resolveFormat picks an explicit format, else infers one from path, else json.
func resolveFormat(name, path string) (todo.Format, error) {
	if name != "" {
		return todo.ParseFormat(name)
	}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		if f, err := todo.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return todo.FormatJSON, nil
}

// tuiCommand launches the TUI.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	s, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	return ui.RunTUI(ctx, s)
}
