package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/clarity-go/internal/store"
	"github.com/nibzard/clarity-go/internal/todo"
)

// shortIDLen is how much of a task id ls prints.
const shortIDLen = 8

// newFlagSet returns a subcommand flag set that reports to the app's stderr.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("clarity "+name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// addCommand adds a task from the joined arguments.
func (a *app) addCommand(ctx context.Context, args []string) error {
	text := todo.NormalizeText(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("task text required")
	}

	s, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	task, ok := s.AddTask(text)
	if !ok {
		return fmt.Errorf("task was not added")
	}
	if err := checkSaved(s); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s %s\n", shortID(task.ID), task.Text)
	return nil
}

// lsCommand lists tasks under the stored filter, or an override.
func (a *app) lsCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("ls")
	filterName := fs.String("filter", "", "Show tasks matching this filter without changing the stored one")
	all := fs.Bool("a", false, "Show all tasks")
	showIDs := fs.Bool("ids", false, "Show full task ids")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	state := s.State()
	filter := state.Filter
	if *filterName != "" {
		if filter, err = todo.ParseFilter(*filterName); err != nil {
			return err
		}
	}
	if *all {
		filter = todo.FilterAll
	}

	printTaskList(a.out, state, filter, *showIDs)
	return nil
}

// toggleCommand flips completion of each referenced task.
func (a *app) toggleCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return store.ErrTaskRefRequired
	}

	s, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	// Resolve every ref first so positions refer to the list as shown.
	tasks, err := resolveAll(s, args)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		s.ToggleTask(task.ID)
		state := "done"
		if task.Completed {
			state = "active"
		}
		fmt.Fprintf(a.out, "Marked %s %s: %s\n", state, shortID(task.ID), task.Text)
	}
	return checkSaved(s)
}

// editCommand replaces the text of one task.
func (a *app) editCommand(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: clarity edit <ref> <text...>")
	}
	text := todo.NormalizeText(strings.Join(args[1:], " "))
	if text == "" {
		return fmt.Errorf("task text required")
	}

	s, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	task, err := s.Resolve(args[0])
	if err != nil {
		return err
	}
	s.UpdateTask(task.ID, text)
	if err := checkSaved(s); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s %s\n", shortID(task.ID), text)
	return nil
}

// rmCommand deletes each referenced task.
func (a *app) rmCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return store.ErrTaskRefRequired
	}

	s, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	tasks, err := resolveAll(s, args)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		s.DeleteTask(task.ID)
		fmt.Fprintf(a.out, "Deleted %s %s\n", shortID(task.ID), task.Text)
	}
	return checkSaved(s)
}

// clearCommand removes all completed tasks.
func (a *app) clearCommand(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	s, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	n := s.ClearCompleted()
	if n == 0 {
		fmt.Fprintln(a.out, "No completed tasks.")
		return nil
	}
	if err := checkSaved(s); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Cleared %d completed %s.\n", n, pluralize(n, "task"))
	return nil
}

// filterCommand prints or sets the stored view filter.
func (a *app) filterCommand(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}

	s, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if len(args) == 0 {
		fmt.Fprintln(a.out, s.Filter())
		return nil
	}

	f, err := todo.ParseFilter(args[0])
	if err != nil {
		return err
	}
	s.SetFilter(f)
	if err := checkSaved(s); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Filter set to %s\n", f)
	return nil
}

func resolveAll(s *store.Store, refs []string) ([]todo.Task, error) {
	tasks := make([]todo.Task, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		task, err := s.Resolve(ref)
		if err != nil {
			return nil, err
		}
		if seen[task.ID] {
			continue
		}
		seen[task.ID] = true
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// printTaskList prints the tasks visible under filter. Rows are numbered by
// their position in the stored filter's view, which is what positional refs
// resolve against; rows outside that view are unnumbered.
func printTaskList(w io.Writer, state todo.State, filter todo.Filter, fullIDs bool) {
	if len(state.Tasks) == 0 {
		fmt.Fprintln(w, "Your list is empty. Add a task with: clarity add <text>")
		return
	}

	positions := make(map[string]int, len(state.Tasks))
	for i, t := range state.Visible() {
		positions[t.ID] = i + 1
	}

	visible := todo.Visible(state.Tasks, filter)
	if len(visible) == 0 {
		fmt.Fprintf(w, "No %s tasks. Enjoy the peace!\n", filter)
	}
	unnumbered := false
	for _, t := range visible {
		n := positions[t.ID]
		if n == 0 {
			unnumbered = true
		}
		printTask(w, n, t, fullIDs)
	}

	counts := todo.CountTasks(state.Tasks)
	fmt.Fprintln(w)
	footer := fmt.Sprintf("%d %s left", counts.Active, pluralize(counts.Active, "item"))
	if counts.Completed > 0 {
		footer += fmt.Sprintf(", %d completed", counts.Completed)
	}
	if filter != todo.FilterAll {
		footer += fmt.Sprintf(" (showing %s)", filter)
	}
	fmt.Fprintln(w, footer)
	if unnumbered {
		fmt.Fprintf(w, "Numbers follow the %s view; refer to unnumbered tasks by id.\n", state.Filter)
	}
}

// printTask prints a single task. A position of 0 prints as "-".
func printTask(w io.Writer, n int, t todo.Task, fullID bool) {
	num := "  -"
	if n > 0 {
		num = fmt.Sprintf("%3d", n)
	}
	check := " "
	if t.Completed {
		check = "x"
	}
	id := shortID(t.ID)
	if fullID {
		id = t.ID
	}
	fmt.Fprintf(w, "%s. [%s] %s  (%s)\n", num, check, t.Text, id)
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
