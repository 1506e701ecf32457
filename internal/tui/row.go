package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// row adapts a todo to bubbles/list.Item.
type row struct {
	todo     model.Todo
	selected bool
	expanded bool
	now      time.Time
}

func (r row) Title() string       { return r.todo.Title }
func (r row) Description() string { return r.todo.Description }
func (r row) FilterValue() string { return r.todo.Title }

// summary is the second line of a row: description, deadline, created date.
func (r row) summary() string {
	th := ui.Current()
	desc, cut := ui.TruncateWords(r.todo.Description, ui.DefaultWordLimit)
	if r.expanded {
		desc = "(expanded below)"
	} else if cut {
		desc += th.Muted.Render(" [x]")
	}

	var due string
	if r.todo.Deadline.IsZero() {
		due = th.Muted.Render("no deadline")
	} else {
		left, overdue := ui.DaysLeft(r.todo.Deadline, r.now)
		style := th.Pending
		if overdue {
			style = th.Error
		}
		if r.todo.IsCompleted {
			style = th.Muted
		}
		due = ui.FormatDeadline(r.todo.Deadline) + " " + style.Render("("+left+")")
	}
	created := th.Muted.Render("created " + ui.FormatCreated(r.todo.CreatedAt))
	return strings.Join([]string{desc, due, created}, th.Muted.Render(" · "))
}

// rowDelegate draws each todo on two lines.
type rowDelegate struct{}

func (d rowDelegate) Height() int                               { return 2 }
func (d rowDelegate) Spacing() int                              { return 1 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(row)
	if !ok {
		return
	}
	th := ui.Current()

	box := th.Muted.Render(th.BoxUnchecked)
	if r.selected {
		box = th.Accent.Render(th.BoxChecked)
	}
	mark := th.Pending.Render(th.SymPending)
	title := r.todo.Title
	if r.todo.IsCompleted {
		mark = th.Success.Render(th.SymDone)
		title = th.Done.Render(title)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = th.Selected.Render("> ")
	}
	width := m.Width() - 4
	summary := r.summary()
	if width > 0 {
		summary = ansi.Truncate(summary, width, "…")
	}
	fmt.Fprintf(w, "%s%s %s %s\n    %s", prefix, box, mark, title, summary)
}
