package cli

import (
	"fmt"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

const titleWidth = 60

// numbered keeps a todo's 1-based position in the server listing, so grouped
// output still shows indexes that done/rm accept.
type numbered struct {
	n    int
	todo model.Todo
}

func renderList(todos []model.Todo, group bool, now time.Time) string {
	th := ui.Current()
	done, pending := stats(todos)

	var lines []string
	lines = append(lines, ui.Header(done, pending))
	lines = append(lines, th.Muted.Render(ui.ProgressBar(done, done+pending, 28)))
	lines = append(lines, "")

	all := make([]numbered, len(todos))
	for i, t := range todos {
		all[i] = numbered{n: i + 1, todo: t}
	}
	if group {
		lines = append(lines, groupLines(all, now)...)
	} else {
		lines = append(lines, flatLines(all, now)...)
	}
	lines = append(lines, "")
	lines = append(lines, th.Muted.Render("Tip: add with `todo add -desc \"two litres\" -due 2026-11-01 Buy milk`"))
	return ui.Panel(lines)
}

func stats(todos []model.Todo) (done, pending int) {
	for _, t := range todos {
		if t.IsCompleted {
			done++
		} else {
			pending++
		}
	}
	return
}

func flatLines(items []numbered, now time.Time) []string {
	th := ui.Current()
	if len(items) == 0 {
		return []string{th.Muted.Render("no todos")}
	}
	out := make([]string, 0, len(items)*2)
	for _, it := range items {
		t := it.todo
		box, style := th.BoxUnchecked, th.Muted
		title := ui.Truncate(t.Title, titleWidth)
		if t.IsCompleted {
			box, style = th.BoxChecked, th.Success
			title = th.Done.Render(title)
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			th.Muted.Render(fmt.Sprintf("%2d.", it.n)), style.Render(box), title))

		desc, _ := ui.TruncateWords(t.Description, ui.DefaultWordLimit)
		out = append(out, "    "+th.Muted.Render(desc)+"  "+dueLine(t, now))
	}
	return out
}

func dueLine(t model.Todo, now time.Time) string {
	th := ui.Current()
	if t.Deadline.IsZero() {
		return th.Muted.Render("no deadline")
	}
	left, overdue := ui.DaysLeft(t.Deadline, now)
	style := th.Pending
	switch {
	case t.IsCompleted:
		style = th.Muted
	case overdue:
		style = th.Error
	}
	return th.Muted.Render("due "+ui.FormatDeadline(t.Deadline)) + " " + style.Render("("+left+")")
}

func groupLines(items []numbered, now time.Time) []string {
	th := ui.Current()
	var pend, done []numbered
	for _, it := range items {
		if it.todo.IsCompleted {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, th.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, th.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend, now)...)
	}
	lines = append(lines, "")
	lines = append(lines, th.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, th.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done, now)...)
	}
	return lines
}
