// Package tui is the interactive todo screen. Every remote call runs as a
// tea.Cmd; its result comes back as a message and is applied to the
// collection controller only then.
package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/collection"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/notify"
	"github.com/Makepad-fr/tada/internal/service"
	"github.com/Makepad-fr/tada/internal/ui"
)

const (
	MsgFillAll     = "Please fill in all fields."
	MsgBadDeadline = "Deadline must look like 2006-01-02 15:04."
)

// Options wires a Model.
type Options struct {
	Service Service
	// Notes receives every notification, including those of Service.
	Notes    *notify.Channel
	Logger   *log.Logger
	Now      func() time.Time
	Location *time.Location
}

type Model struct {
	ctx    context.Context
	svc    Service
	notes  *notify.Channel
	logger *log.Logger
	now    func() time.Time
	loc    *time.Location

	ctrl     *collection.Controller
	list     list.Model
	form     form
	keys     listKeys
	toasts   *toasts
	expanded map[model.ID]bool

	loadFailed bool
	width      int
	height     int
}

func New(ctx context.Context, opts Options) Model {
	if opts.Notes == nil {
		opts.Notes = notify.NewChannel(32)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	th := ui.Current()
	keys := newListKeys()
	l := list.New(nil, rowDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = th.Title
	l.Styles.HelpStyle = th.Help
	l.Styles.PaginationStyle = th.Help
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full
	// q is handled here so it can be typed into the form.
	l.DisableQuitKeybindings()

	m := Model{
		ctx:      ctx,
		svc:      opts.Service,
		notes:    opts.Notes,
		logger:   opts.Logger,
		now:      opts.Now,
		loc:      opts.Location,
		ctrl:     collection.New(),
		list:     l,
		form:     newForm(),
		keys:     keys,
		toasts:   &toasts{},
		expanded: map[model.ID]bool{},
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// Init fires the initial listing and starts draining notifications.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForToast(m.notes.C())}
	if m.ctrl.StartLoad() {
		cmds = append(cmds, m.loadCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case toastMsg:
		seq := m.toasts.push(notify.Notification(msg))
		return m, tea.Batch(waitForToast(m.notes.C()), expireToast(seq, toastTTL))

	case toastExpiredMsg:
		m.toasts.expire(msg.seq)
		return m, nil

	case loadedMsg:
		if !msg.ok {
			m.loadFailed = true
			return m, nil
		}
		m.loadFailed = false
		m.ctrl.CompleteLoad(msg.todos)
		m.logger.Debug("todos loaded", "count", m.ctrl.Len())
		cmd := m.refresh()
		return m, cmd

	case createdMsg:
		m.ctrl.EndSubmit(msg.session)
		if !msg.ok {
			return m, nil
		}
		m.ctrl.Upsert(msg.todo)
		m.ctrl.CloseSession(msg.session)
		cmd := m.refresh()
		return m, cmd

	case updatedMsg:
		if msg.session != 0 {
			m.ctrl.EndSubmit(msg.session)
		}
		if !msg.ok {
			return m, nil
		}
		if !m.ctrl.ApplyUpdate(msg.todo) {
			m.logger.Debug("update result for a removed todo dropped", "id", msg.id)
		}
		if msg.session != 0 {
			m.ctrl.CloseSession(msg.session)
		}
		cmd := m.refresh()
		return m, cmd

	case removedMsg:
		if msg.ok {
			m.ctrl.RemoveByID(msg.id)
			delete(m.expanded, msg.id)
		}
		cmd := m.refresh()
		return m, cmd

	case bulkRemovedMsg:
		if msg.ok {
			m.ctrl.BulkRemove(msg.ids)
		}
		cmd := m.refresh()
		return m, cmd

	case tea.KeyMsg:
		if m.ctrl.Modal().Open() {
			return m.updateForm(msg)
		}
		if cmd, handled := m.handleListKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	if m.ctrl.Modal().Open() {
		cmd = m.form.update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	current, hasCurrent := m.current()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keys.New):
		return m.form.reset(m.ctrl.OpenNew(), m.loc), true

	case key.Matches(msg, m.keys.Edit):
		if !hasCurrent {
			return nil, true
		}
		modal, ok := m.ctrl.OpenEdit(current.ID)
		if !ok {
			return nil, true
		}
		return m.form.reset(modal, m.loc), true

	case key.Matches(msg, m.keys.Select):
		if hasCurrent {
			m.ctrl.ToggleSelect(current.ID)
		}
		return m.refresh(), true

	case key.Matches(msg, m.keys.Expand):
		if hasCurrent {
			m.expanded[current.ID] = !m.expanded[current.ID]
		}
		return m.refresh(), true

	case key.Matches(msg, m.keys.Complete):
		if !hasCurrent {
			return nil, true
		}
		return m.updateCmd(0, current.ID, model.CompletionPatch(!current.IsCompleted)), true

	case key.Matches(msg, m.keys.Delete):
		if !hasCurrent {
			return nil, true
		}
		return m.removeCmd(current.ID), true

	case key.Matches(msg, m.keys.DeleteMarked):
		ids := m.ctrl.Selected()
		if ids.Len() == 0 {
			notify.Error(m.notes, service.MsgNoneChosen)
			return nil, true
		}
		return m.bulkRemoveCmd(ids), true
	}
	return nil, false
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.form.keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.form.keys.Cancel):
		m.ctrl.CloseModal()
	case key.Matches(msg, m.form.keys.Next):
		cmd = m.form.cycle(1)
	case key.Matches(msg, m.form.keys.Prev):
		cmd = m.form.cycle(-1)
	case key.Matches(msg, m.form.keys.Submit):
		cmd = m.submit(m.ctrl.Modal())
	default:
		cmd = m.form.update(msg)
	}
	return m, cmd
}

// submit sends the form for its session. Nothing is sent while a previous
// submit of the same session is in flight.
func (m Model) submit(modal collection.Modal) tea.Cmd {
	if m.ctrl.Submitting() {
		return nil
	}
	fields, err := m.form.fields(m.loc)
	if errors.Is(err, ui.ErrBadDeadline) {
		notify.Error(m.notes, MsgBadDeadline)
		return nil
	}
	if err := fields.Validate(); err != nil {
		notify.Error(m.notes, MsgFillAll)
		return nil
	}
	if !m.ctrl.BeginSubmit(modal.Session) {
		return nil
	}
	if modal.Kind == collection.ModalEditing {
		return m.updateCmd(modal.Session, modal.Todo.ID, model.FieldsPatch(fields))
	}
	return m.createCmd(modal.Session, fields)
}

// current is the todo under the cursor.
func (m Model) current() (model.Todo, bool) {
	r, ok := m.list.SelectedItem().(row)
	if !ok {
		return model.Todo{}, false
	}
	return m.ctrl.Get(r.todo.ID)
}

// refresh rebuilds the list rows from the controller.
func (m *Model) refresh() tea.Cmd {
	now := m.now()
	todos := m.ctrl.Todos()
	items := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		items = append(items, row{
			todo:     t,
			selected: m.ctrl.IsSelected(t.ID),
			expanded: m.expanded[t.ID],
			now:      now,
		})
	}
	done, pending := m.ctrl.Stats()
	m.list.Title = ui.Header(done, pending)
	return m.list.SetItems(items)
}

func (m *Model) resize() {
	listHeight := m.height - 4 - lipgloss.Height(m.toasts.view())
	if m.ctrl.Modal().Open() {
		listHeight -= 14
	}
	if listHeight < 4 {
		listHeight = 4
	}
	m.list.SetSize(m.width-4, listHeight)
	m.form.setWidth(m.width - 4)
}

func (m Model) View() string {
	m.resize()
	th := ui.Current()

	var parts []string
	switch {
	case !m.ctrl.Loaded() && m.loadFailed:
		parts = append(parts, th.Error.Render("Could not load todos."))
	case !m.ctrl.Loaded():
		parts = append(parts, th.Muted.Render("Loading todos…"))
	default:
		parts = append(parts, m.list.View())
	}

	if t, ok := m.current(); ok && m.expanded[t.ID] {
		detail := lipgloss.NewStyle().Width(m.width - 8).Render(t.Description)
		parts = append(parts, ui.PanelStyle().Render(th.Title.Render(t.Title)+"\n"+detail))
	}
	if modal := m.ctrl.Modal(); modal.Open() {
		parts = append(parts, m.form.view(modal, m.ctrl.Submitting()))
	}
	if v := m.toasts.view(); v != "" {
		parts = append(parts, v)
	}
	return ui.PanelStyle().Render(strings.Join(parts, "\n"))
}

// Controller exposes the collection state, mainly for tests.
func (m Model) Controller() *collection.Controller { return m.ctrl }
