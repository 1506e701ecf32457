package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/Makepad-fr/tada/internal/notify"
)

func okLine(msg string) string   { return Current().Success.Render(Current().SymDone + " " + msg) }
func failLine(msg string) string { return Current().Error.Render("✖ " + msg) }
func infoLine(msg string) string { return Current().Muted.Render(Current().SymPending + " " + msg) }

// Printer shows status lines: failures on errOut, the rest on out.
// It is also a notify.Notifier.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
}

func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

func (p *Printer) OK(msg string)   { p.line(p.out, okLine(msg)) }
func (p *Printer) Fail(msg string) { p.line(p.errOut, failLine(msg)) }
func (p *Printer) Info(msg string) { p.line(p.out, infoLine(msg)) }

// Hint is a dim line on errOut, shown after a failure.
func (p *Printer) Hint(msg string) { p.line(p.errOut, Current().Muted.Render(msg)) }

// Plain writes s to out as is.
func (p *Printer) Plain(s string) { p.line(p.out, s) }

func (p *Printer) Notify(n notify.Notification) {
	switch n.Level {
	case notify.LevelError:
		p.Fail(n.Text)
	case notify.LevelSuccess:
		p.OK(n.Text)
	default:
		p.Info(n.Text)
	}
}

func (p *Printer) line(w io.Writer, s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(w, s)
}
