// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/clarity-go/internal/store"
	"github.com/nibzard/clarity-go/internal/todo"
)

// RunTUI starts the interactive task list on s until the user quits or ctx
// is cancelled.
func RunTUI(ctx context.Context, s *store.Store) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	sub := s.Subscribe()
	defer sub.Unsubscribe()

	model := newTUIModel(s, sub)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeConfirmDelete
)

type tuiModel struct {
	store *store.Store
	sub   *store.Subscription

	state      todo.State
	rev        uint64
	visible    []todo.Task
	cursor     int
	mode       mode
	input      textinput.Model
	editID     string
	pendingDel *todo.Task
	status     string
	showHelp   bool
}

// changeMsg carries a store notification into the program loop.
type changeMsg struct {
	change store.Change
}

type subClosedMsg struct{}

func newTUIModel(s *store.Store, sub *store.Subscription) *tuiModel {
	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 512
	ti.Width = 50

	m := &tuiModel{
		store:  s,
		sub:    sub,
		input:  ti,
		mode:   modeList,
		status: "Press a to add a task, h for help.",
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return waitForChange(m.sub)
}

func waitForChange(sub *store.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-sub.Changes()
		if !ok {
			return subClosedMsg{}
		}
		return changeMsg{change: change}
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateDeleteConfirm(msg.String())
		}
		return m.updateList(msg.String())
	case changeMsg:
		// Handlers refresh right after mutating, so queued changes are
		// often older than what is shown.
		if msg.change.Rev > m.rev {
			m.rev = msg.change.Rev
			m.sync(msg.change.State)
		}
		return m, waitForChange(m.sub)
	case subClosedMsg:
		m.sub = nil
	case tea.WindowSizeMsg:
		if msg.Width > 20 {
			m.input.Width = msg.Width - 20
		}
	}
	return m, nil
}

func (m *tuiModel) updateList(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "j", "down":
		m.cursor = clampCursor(m.cursor+1, len(m.visible))
	case "k", "up":
		m.cursor = clampCursor(m.cursor-1, len(m.visible))
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = clampCursor(len(m.visible)-1, len(m.visible))
	case "1":
		m.setFilter(todo.FilterAll)
	case "2":
		m.setFilter(todo.FilterActive)
	case "3":
		m.setFilter(todo.FilterCompleted)
	case "tab":
		m.setFilter(nextFilter(m.state.Filter))
	case "h", "?":
		m.showHelp = !m.showHelp
	case "a":
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = "What needs to be done?"
		m.status = "Type a task and press enter, esc to cancel."
		return m, m.input.Focus()
	case "e", "enter":
		task, ok := m.selected()
		if !ok {
			m.status = "No task selected."
			return m, nil
		}
		if task.Completed {
			m.status = "Completed tasks cannot be edited."
			return m, nil
		}
		m.mode = modeEdit
		m.editID = task.ID
		m.input.SetValue(task.Text)
		m.input.CursorEnd()
		m.status = "Edit the task and press enter, esc to cancel."
		return m, m.input.Focus()
	case " ", "x":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.store.ToggleTask(task.ID)
		m.refresh()
		if task.Completed {
			m.status = "Marked active."
		} else {
			m.status = "Marked done."
		}
	case "d", "delete":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.pendingDel = &task
		m.mode = modeConfirmDelete
		m.status = ""
	case "c":
		if n := m.store.ClearCompleted(); n > 0 {
			m.status = fmt.Sprintf("Cleared %s.", plural(n, "completed task"))
		} else {
			m.status = "No completed tasks to clear."
		}
		m.refresh()
	}
	return m, nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.leaveInput("Cancelled.")
		return m, nil
	case "enter":
		text := todo.NormalizeText(m.input.Value())
		if text == "" {
			m.status = "Task text cannot be empty."
			return m, nil
		}
		if m.mode == modeAdd {
			task, ok := m.store.AddTask(text)
			m.refresh()
			if ok {
				m.selectID(task.ID)
			}
			m.leaveInput("Added task.")
			return m, nil
		}
		m.store.UpdateTask(m.editID, text)
		m.refresh()
		m.leaveInput("Updated task.")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) leaveInput(status string) {
	m.mode = modeList
	m.editID = ""
	m.input.SetValue("")
	m.input.Blur()
	m.status = status
}

func (m *tuiModel) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		if m.pendingDel != nil {
			m.store.DeleteTask(m.pendingDel.ID)
			m.refresh()
			m.status = "Deleted task."
		}
	case "n", "N", "esc":
		m.status = "Delete cancelled."
	case "ctrl+c":
		return m, tea.Quit
	default:
		return m, nil
	}
	m.mode = modeList
	m.pendingDel = nil
	return m, nil
}

func (m *tuiModel) setFilter(f todo.Filter) {
	m.store.SetFilter(f)
	m.refresh()
	m.cursor = 0
}

// sync adopts a new state snapshot and keeps the cursor on a visible row.
// refresh adopts the store's current state.
func (m *tuiModel) refresh() {
	state, rev := m.store.Current()
	m.rev = rev
	m.sync(state)
}

func (m *tuiModel) sync(state todo.State) {
	m.state = state
	m.visible = state.Visible()
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m *tuiModel) selected() (todo.Task, bool) {
	if len(m.visible) == 0 {
		return todo.Task{}, false
	}
	return m.visible[m.cursor], true
}

func (m *tuiModel) selectID(id string) {
	for i, t := range m.visible {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		b.WriteString("Press h to close help\n")
		return b.String()
	}

	writeTabs(&b, m.state)
	m.writeTasks(&b)
	writeFooter(&b, m.state)

	switch m.mode {
	case modeAdd:
		b.WriteString("New task\n")
		b.WriteString(m.input.View() + "\n\n")
	case modeEdit:
		b.WriteString("Edit task\n")
		b.WriteString(m.input.View() + "\n\n")
	case modeConfirmDelete:
		b.WriteString("Are you sure?\n")
		b.WriteString(fmt.Sprintf("This will permanently delete %q. Delete? (y/n)\n\n", m.pendingDel.Text))
	}

	if err := m.store.LastPersistError(); err != nil {
		b.WriteString(fmt.Sprintf("Warning: changes are not being saved (%v)\n", err))
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString("a add • e edit • space toggle • d delete • c clear • 1/2/3 filter • h help • q quit\n")
	return b.String()
}

func (m *tuiModel) writeTasks(b *strings.Builder) {
	if len(m.state.Tasks) == 0 {
		b.WriteString("  Your list is empty.\n")
		b.WriteString("  Press a to add a task to get started.\n\n")
		return
	}
	if len(m.visible) == 0 {
		b.WriteString("  No tasks here. Enjoy the peace!\n\n")
		return
	}
	for i, task := range m.visible {
		b.WriteString(formatTask(task, i == m.cursor))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeTitle(b *strings.Builder) {
	title := "Clarity"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeTabs(b *strings.Builder, state todo.State) {
	counts := todo.CountTasks(state.Tasks)
	tabs := make([]string, 0, 3)
	for i, f := range todo.Filters() {
		label := fmt.Sprintf("%d %s (%d)", i+1, tabLabel(f), counts.Of(f))
		if f == state.Filter {
			label = "[" + label + "]"
		} else {
			label = " " + label + " "
		}
		tabs = append(tabs, label)
	}
	b.WriteString(strings.Join(tabs, "  ") + "\n\n")
}

func writeFooter(b *strings.Builder, state todo.State) {
	if len(state.Tasks) == 0 {
		return
	}
	counts := todo.CountTasks(state.Tasks)
	line := plural(counts.Active, "item") + " left"
	if counts.Completed > 0 {
		line += " • c to clear completed"
	}
	b.WriteString(line + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  j/k, up/down  Move cursor\n")
	b.WriteString("  g/G           First/last task\n")
	b.WriteString("  a             Add a task\n")
	b.WriteString("  e, enter      Edit the selected task\n")
	b.WriteString("  space, x      Toggle done\n")
	b.WriteString("  d             Delete (asks y/n)\n")
	b.WriteString("  c             Clear completed tasks\n")
	b.WriteString("  1, 2, 3       Show all, active, completed\n")
	b.WriteString("  tab           Next filter\n")
	b.WriteString("  h, ?          Toggle this help screen\n")
	b.WriteString("  q, ctrl+c     Quit\n\n")
}

func formatTask(t todo.Task, selected bool) string {
	pointer := " "
	if selected {
		pointer = ">"
	}
	check := " "
	if t.Completed {
		check = "x"
	}
	return fmt.Sprintf("%s [%s] %s", pointer, check, t.Text)
}

func tabLabel(f todo.Filter) string {
	switch f {
	case todo.FilterActive:
		return "Active"
	case todo.FilterCompleted:
		return "Completed"
	}
	return "All"
}

func nextFilter(f todo.Filter) todo.Filter {
	filters := todo.Filters()
	for i, candidate := range filters {
		if candidate == f {
			return filters[(i+1)%len(filters)]
		}
	}
	return todo.FilterAll
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func clampCursor(cursor, n int) int {
	if n <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// IsTTY returns true if stdout is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
