package tui

import (
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/notify"
	"github.com/Makepad-fr/tada/internal/ui"
)

const (
	toastTTL  = 4 * time.Second
	maxToasts = 5
)

type toast struct {
	seq int
	n   notify.Notification
}

// toasts is the stack of visible notifications, oldest first.
type toasts struct {
	items []toast
	next  int
}

func (t *toasts) push(n notify.Notification) int {
	t.next++
	t.items = append(t.items, toast{seq: t.next, n: n})
	if len(t.items) > maxToasts {
		t.items = t.items[len(t.items)-maxToasts:]
	}
	return t.next
}

func (t *toasts) expire(seq int) {
	for i, it := range t.items {
		if it.seq == seq {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

func (t *toasts) texts() []string {
	out := make([]string, len(t.items))
	for i, it := range t.items {
		out[i] = it.n.Text
	}
	return out
}

func (t *toasts) view() string {
	if len(t.items) == 0 {
		return ""
	}
	th := ui.Current()
	lines := make([]string, 0, len(t.items))
	for _, it := range t.items {
		switch it.n.Level {
		case notify.LevelError:
			lines = append(lines, th.Error.Render("✖ "+it.n.Text))
		case notify.LevelSuccess:
			lines = append(lines, th.Success.Render(th.SymDone+" "+it.n.Text))
		default:
			lines = append(lines, th.Muted.Render(th.SymPending+" "+it.n.Text))
		}
	}
	return strings.Join(lines, "\n")
}
