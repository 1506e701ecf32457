// Package notify carries short user-facing messages from the service layer to
// whichever surface is showing them. Delivery is fire-and-forget.
package notify

import (
	"sync"
	"time"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is one toast.
type Notification struct {
	Level Level
	Text  string
	At    time.Time
}

// Notifier accepts notifications without blocking the caller.
type Notifier interface {
	Notify(Notification)
}

// Func adapts a function to Notifier.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

func Success(n Notifier, text string) { send(n, LevelSuccess, text) }
func Error(n Notifier, text string)   { send(n, LevelError, text) }
func Info(n Notifier, text string)    { send(n, LevelInfo, text) }

func send(n Notifier, level Level, text string) {
	if n == nil {
		return
	}
	n.Notify(Notification{Level: level, Text: text, At: time.Now()})
}

// Discard drops everything.
var Discard Notifier = Func(func(Notification) {})

// Channel buffers notifications for a consumer loop. When the buffer is full
// the oldest pending notification is dropped.
type Channel struct {
	mu sync.Mutex
	ch chan Notification
}

func NewChannel(size int) *Channel {
	if size <= 0 {
		size = 16
	}
	return &Channel{ch: make(chan Notification, size)}
}

func (c *Channel) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		select {
		case c.ch <- n:
			return
		default:
		}
		select {
		case <-c.ch:
		default:
		}
	}
}

// C is the receive side.
func (c *Channel) C() <-chan Notification { return c.ch }

// Recorder keeps every notification it receives.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	r.all = append(r.all, n)
	r.mu.Unlock()
}

// All returns a copy of what was recorded.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.all))
	copy(out, r.all)
	return out
}

// Texts returns the recorded texts, optionally filtered by level.
func (r *Recorder) Texts(levels ...Level) []string {
	var out []string
	for _, n := range r.All() {
		if len(levels) == 0 || containsLevel(levels, n.Level) {
			out = append(out, n.Text)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.all = nil
	r.mu.Unlock()
}

func containsLevel(levels []Level, l Level) bool {
	for _, x := range levels {
		if x == l {
			return true
		}
	}
	return false
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, x := range m {
		if x != nil {
			x.Notify(n)
		}
	}
}
