package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/collection"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDeadline
	fieldCount
)

// form is the create/edit overlay. It only holds the edit buffer; whether it
// is shown, and for which todo, is the controller's modal state.
type form struct {
	title    textinput.Model
	desc     textarea.Model
	deadline textinput.Model
	focus    int
	keys     formKeys
}

func newForm() form {
	f := form{keys: newFormKeys()}

	f.title = textinput.New()
	f.title.Prompt = "> "
	f.title.Placeholder = "Title"
	f.title.CharLimit = 200

	f.desc = textarea.New()
	f.desc.Placeholder = "Description"
	f.desc.ShowLineNumbers = false
	f.desc.SetHeight(3)
	f.desc.CharLimit = 2000

	f.deadline = textinput.New()
	f.deadline.Prompt = "> "
	f.deadline.Placeholder = "2006-01-02 15:04"
	f.deadline.CharLimit = 32
	return f
}

// reset loads the draft of a freshly opened modal and focuses the title.
func (f *form) reset(m collection.Modal, loc *time.Location) tea.Cmd {
	d := m.Draft()
	f.title.SetValue(d.Title)
	f.title.CursorEnd()
	f.desc.SetValue(d.Description)
	deadline := d.Deadline
	if !deadline.IsZero() {
		deadline = deadline.In(loc)
	}
	f.deadline.SetValue(ui.EditableDeadline(deadline))
	f.focus = fieldTitle
	return f.applyFocus()
}

func (f *form) setWidth(w int) {
	if w < 20 {
		w = 20
	}
	f.title.Width = w - 4
	f.deadline.Width = w - 4
	f.desc.SetWidth(w - 2)
}

func (f *form) cycle(delta int) tea.Cmd {
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.applyFocus()
}

func (f *form) applyFocus() tea.Cmd {
	f.title.Blur()
	f.desc.Blur()
	f.deadline.Blur()
	switch f.focus {
	case fieldDescription:
		return f.desc.Focus()
	case fieldDeadline:
		return f.deadline.Focus()
	default:
		return f.title.Focus()
	}
}

// update forwards a message to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldDescription:
		f.desc, cmd = f.desc.Update(msg)
	case fieldDeadline:
		f.deadline, cmd = f.deadline.Update(msg)
	default:
		f.title, cmd = f.title.Update(msg)
	}
	return cmd
}

// fields reads the buffer. Surrounding whitespace does not count as content.
func (f *form) fields(loc *time.Location) (model.Fields, error) {
	deadline, err := ui.ParseDeadline(f.deadline.Value(), loc)
	if err != nil {
		return model.Fields{}, err
	}
	return model.Fields{
		Title:       strings.TrimSpace(f.title.Value()),
		Description: strings.TrimSpace(f.desc.Value()),
		Deadline:    deadline,
	}, nil
}

func (f *form) view(m collection.Modal, submitting bool) string {
	th := ui.Current()
	heading := "New todo"
	if m.Kind == collection.ModalEditing {
		heading = "Edit todo"
	}
	if submitting {
		heading += th.Muted.Render("  saving…")
	}
	label := func(i int, s string) string {
		if i == f.focus {
			return th.Accent.Render(s)
		}
		return th.Muted.Render(s)
	}
	lines := []string{
		th.Title.Render(heading),
		label(fieldTitle, "Title"),
		f.title.View(),
		label(fieldDescription, "Description"),
		f.desc.View(),
		label(fieldDeadline, "Deadline"),
		f.deadline.View(),
		th.Help.Render("tab next · shift+tab prev · ctrl+s save · esc cancel"),
	}
	return ui.PanelStyle().Render(strings.Join(lines, "\n"))
}
