package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/notify"
)

// Service is the remote collection as seen by the screen;
// *service.TodoService implements it.
type Service interface {
	List(ctx context.Context) ([]model.Todo, bool)
	Create(ctx context.Context, fields model.Fields) (model.Todo, bool)
	Update(ctx context.Context, id model.ID, patch model.Patch) (model.Todo, bool)
	RemoveOne(ctx context.Context, id model.ID) bool
	RemoveMany(ctx context.Context, ids model.IDSet) bool
}

// Results of service calls. A session of zero means the call did not come
// from the form.
type (
	loadedMsg struct {
		todos []model.Todo
		ok    bool
	}
	createdMsg struct {
		session uint64
		todo    model.Todo
		ok      bool
	}
	updatedMsg struct {
		session uint64
		id      model.ID
		todo    model.Todo
		ok      bool
	}
	removedMsg struct {
		id model.ID
		ok bool
	}
	bulkRemovedMsg struct {
		ids model.IDSet
		ok  bool
	}
	toastMsg        notify.Notification
	toastExpiredMsg struct{ seq int }
)

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		todos, ok := m.svc.List(m.ctx)
		return loadedMsg{todos: todos, ok: ok}
	}
}

func (m Model) createCmd(session uint64, fields model.Fields) tea.Cmd {
	return func() tea.Msg {
		todo, ok := m.svc.Create(m.ctx, fields)
		return createdMsg{session: session, todo: todo, ok: ok}
	}
}

func (m Model) updateCmd(session uint64, id model.ID, patch model.Patch) tea.Cmd {
	return func() tea.Msg {
		todo, ok := m.svc.Update(m.ctx, id, patch)
		return updatedMsg{session: session, id: id, todo: todo, ok: ok}
	}
}

func (m Model) removeCmd(id model.ID) tea.Cmd {
	return func() tea.Msg {
		return removedMsg{id: id, ok: m.svc.RemoveOne(m.ctx, id)}
	}
}

func (m Model) bulkRemoveCmd(ids model.IDSet) tea.Cmd {
	return func() tea.Msg {
		return bulkRemovedMsg{ids: ids, ok: m.svc.RemoveMany(m.ctx, ids)}
	}
}

// waitForToast blocks until the next notification arrives.
func waitForToast(ch <-chan notify.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return toastMsg(<-ch)
	}
}

func expireToast(seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}
