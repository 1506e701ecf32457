package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/notify"
	"github.com/Makepad-fr/tada/internal/service"
	"github.com/Makepad-fr/tada/internal/session"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Options carry the process streams. Nil writers mean os.Stdout / os.Stderr.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Interactive runs the ls screen; tests replace it.
	Interactive func(ctx context.Context, opts tui.Options) error
}

type app struct {
	cfg    *config.Config
	out    *ui.Printer
	logger *log.Logger
	store  *session.Store
	client *api.Client
	svc    *service.TodoService
}

// Run parses root flags, dispatches the subcommand and returns an exit code.
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	if opt.Interactive == nil {
		opt.Interactive = tui.Run
	}
	out := ui.NewPrinter(opt.Stdout, opt.Stderr)

	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(opt.Stderr)
	fs.Usage = func() { PrintHelp(opt.Stderr) }
	cfg, err := config.Load(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	if err != nil {
		out.Fail(err.Error())
		return ExitUsage
	}
	ui.SetTheme(cfg.Theme)

	rest := fs.Args()
	if len(rest) == 0 {
		PrintHelp(opt.Stderr)
		return ExitUsage
	}
	cmd, a := rest[0], rest[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return ExitOK
	case "session":
		return doSession(cfg, out, a)
	case "ls", "print", "add", "edit", "done", "rm", "rm-many":
	default:
		out.Fail("unknown subcommand: " + cmd)
		PrintHelp(opt.Stderr)
		return ExitUsage
	}

	ap, closeLog, err := newApp(cfg, out, opt.Stderr, cmd == "ls")
	if err != nil {
		out.Fail(err.Error())
		return ExitError
	}
	defer closeLog()
	defer ap.saveSession()

	switch cmd {
	case "ls":
		return ap.doInteractive(ctx, opt.Interactive)
	case "print":
		return ap.doPrint(ctx, a)
	case "add":
		return ap.doAdd(ctx, a)
	case "edit":
		return ap.doEdit(ctx, a)
	case "done":
		return ap.doToggle(ctx, a)
	case "rm":
		return ap.doRemove(ctx, a)
	default:
		return ap.doRemoveMany(ctx, a)
	}
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a client for the todo API

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  ls                                 Interactive list
  print [-group]                     Print the list with progress
  add [-desc text] [-due when] <title...>
                                     Create a todo
  edit <index> [-title t] [-desc d] [-due when]
                                     Change fields of the todo at index
  done <index>                       Toggle completion of the todo at index
  rm <index>                         Delete the todo at index
  rm-many <index...>                 Delete several todos in one request
  session set <token> | clear | status
                                     Manage the saved CSRF token

Flags:
  -config path      TOML config file
  -base-url url     API base URL (default http://localhost:8000)
  -timeout d        request timeout
  -csrf-token t     CSRF token to send until the server sets its cookie
  -log-level l      debug, info, warn, error
  -log-format f     text, json, logfmt
  -log-file path    write logs to a file
  -theme name       classic, neon, mono
  -group            group print output by pending/done

Indexes are 1-based positions as shown by print.
Deadlines look like 2006-01-02 15:04.

Examples:
  todo add -desc "two litres" -due "2026-11-01 09:00" Buy milk
  todo print -group
  todo done 2
  todo rm-many 1 3
`)
}

// newApp wires logging, the session store, the HTTP client and the service.
// The interactive screen owns the terminal, so its logs only go to a file.
func newApp(cfg *config.Config, out *ui.Printer, stderr io.Writer, interactive bool) (*app, func(), error) {
	opts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}
	logger, closeLog := logging.Discard(), func() {}
	switch {
	case cfg.LogFile != "":
		l, f, err := logging.OpenFile(cfg.LogFile, opts)
		if err != nil {
			return nil, nil, err
		}
		logger, closeLog = l, func() { _ = f.Close() }
	case !interactive:
		logger = logging.New(stderr, opts)
	}

	store, err := session.Open(cfg.SessionFile)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	token := cfg.CSRFToken
	if token == "" {
		tok, err := store.Get()
		if err != nil {
			logger.Warn("session token unreadable", "path", store.Path, "err", err)
		} else if tok != nil {
			token = tok.Value
		}
	}

	client := api.New(cfg.API(), api.WithCSRFToken(token), api.WithLogger(logger))
	logger.Debug("client ready", "base_url", cfg.BaseURL, "config_files", cfg.Files)
	return &app{
		cfg:    cfg,
		out:    out,
		logger: logger,
		store:  store,
		client: client,
	}, closeLog, nil
}

func (a *app) service(n notify.Notifier) *service.TodoService {
	if a.svc == nil {
		a.svc = service.NewTodoService(a.client, n, a.logger)
	}
	return a.svc
}

// saveSession keeps the token the server last handed out for the next run.
func (a *app) saveSession() {
	ck := a.client.Cookie(a.cfg.CSRFCookie)
	if ck == nil {
		return
	}
	if err := a.store.Save(ck.Value); err != nil {
		a.logger.Warn("session not saved", "path", a.store.Path, "err", err)
	}
}

// -------------- subcommand impls ----------------

func (a *app) doInteractive(ctx context.Context, run func(context.Context, tui.Options) error) int {
	notes := notify.NewChannel(32)
	opts := tui.Options{
		Service: a.service(notes),
		Notes:   notes,
		Logger:  a.logger,
	}
	if err := run(ctx, opts); err != nil {
		a.out.Fail(err.Error())
		return ExitError
	}
	return ExitOK
}

func (a *app) doPrint(ctx context.Context, args []string) int {
	fs := newFlagSet("print")
	group := fs.Bool("group", a.cfg.Group, "group output by pending/done")
	if _, err := parseInterspersed(fs, args); err != nil {
		a.out.Fail("print: " + err.Error())
		return ExitUsage
	}
	todos, ok := a.service(a.out).List(ctx)
	if !ok {
		return ExitError
	}
	a.out.Plain(renderList(todos, *group, time.Now()))
	return ExitOK
}

func (a *app) doAdd(ctx context.Context, args []string) int {
	fs := newFlagSet("add")
	desc := fs.String("desc", "", "description")
	due := fs.String("due", "", "deadline, like 2006-01-02 15:04")
	words, err := parseInterspersed(fs, args)
	if err != nil {
		a.out.Fail("add: " + err.Error())
		return ExitUsage
	}
	deadline, err := ui.ParseDeadline(*due, time.Local)
	if err != nil {
		a.out.Fail("add: " + err.Error())
		return ExitUsage
	}
	fields := model.Fields{
		Title:       strings.TrimSpace(strings.Join(words, " ")),
		Description: strings.TrimSpace(*desc),
		Deadline:    deadline,
	}
	if err := fields.Validate(); err != nil {
		a.out.Fail(tui.MsgFillAll)
		a.out.Hint("usage: todo add -desc <text> -due <when> <title...>")
		return ExitUsage
	}
	if _, ok := a.service(a.out).Create(ctx, fields); !ok {
		return ExitError
	}
	return ExitOK
}

func (a *app) doEdit(ctx context.Context, args []string) int {
	fs := newFlagSet("edit")
	title := fs.String("title", "", "new title")
	desc := fs.String("desc", "", "new description")
	due := fs.String("due", "", "new deadline, like 2006-01-02 15:04")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		a.out.Fail("edit: " + err.Error())
		return ExitUsage
	}
	if len(pos) != 1 {
		a.out.Fail("usage: todo edit <index> [-title t] [-desc d] [-due when]")
		return ExitUsage
	}
	n, err := strconv.Atoi(pos[0])
	if err != nil {
		a.out.Fail("edit: not a number: " + pos[0])
		return ExitUsage
	}

	var patch model.Patch
	var perr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			v := strings.TrimSpace(*title)
			patch.Title = &v
		case "desc":
			v := strings.TrimSpace(*desc)
			patch.Description = &v
		case "due":
			d, err := ui.ParseDeadline(*due, time.Local)
			if err != nil {
				perr = err
				return
			}
			patch.Deadline = &d
		}
	})
	if perr != nil {
		a.out.Fail("edit: " + perr.Error())
		return ExitUsage
	}
	if patch.Empty() {
		a.out.Fail("edit: nothing to change")
		return ExitUsage
	}
	if (patch.Title != nil && *patch.Title == "") ||
		(patch.Description != nil && *patch.Description == "") ||
		(patch.Deadline != nil && patch.Deadline.IsZero()) {
		a.out.Fail(tui.MsgFillAll)
		return ExitUsage
	}

	todo, code := a.resolve(ctx, n)
	if code != ExitOK {
		return code
	}
	if _, ok := a.service(a.out).Update(ctx, todo.ID, patch); !ok {
		return ExitError
	}
	return ExitOK
}

func (a *app) doToggle(ctx context.Context, args []string) int {
	n, code := a.oneIndex("done", args)
	if code != ExitOK {
		return code
	}
	todo, code := a.resolve(ctx, n)
	if code != ExitOK {
		return code
	}
	if _, ok := a.service(a.out).Update(ctx, todo.ID, model.CompletionPatch(!todo.IsCompleted)); !ok {
		return ExitError
	}
	return ExitOK
}

func (a *app) doRemove(ctx context.Context, args []string) int {
	n, code := a.oneIndex("rm", args)
	if code != ExitOK {
		return code
	}
	todo, code := a.resolve(ctx, n)
	if code != ExitOK {
		return code
	}
	if !a.service(a.out).RemoveOne(ctx, todo.ID) {
		return ExitError
	}
	return ExitOK
}

func (a *app) doRemoveMany(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.out.Fail("usage: todo rm-many <index...>")
		return ExitUsage
	}
	indexes := make([]int, 0, len(args))
	for _, s := range args {
		n, err := strconv.Atoi(s)
		if err != nil {
			a.out.Fail("rm-many: not a number: " + s)
			return ExitUsage
		}
		indexes = append(indexes, n)
	}

	svc := a.service(a.out)
	todos, ok := svc.List(ctx)
	if !ok {
		return ExitError
	}
	var ids model.IDSet
	for _, n := range indexes {
		if !a.inRange(n, len(todos)) {
			return ExitUsage
		}
		ids.Add(todos[n-1].ID)
	}
	if !svc.RemoveMany(ctx, ids) {
		return ExitError
	}
	return ExitOK
}

func doSession(cfg *config.Config, out *ui.Printer, args []string) int {
	store, err := session.Open(cfg.SessionFile)
	if err != nil {
		out.Fail(err.Error())
		return ExitError
	}
	if len(args) == 0 {
		out.Fail("usage: todo session <set|clear|status>")
		return ExitUsage
	}
	switch args[0] {
	case "set":
		if len(args) != 2 {
			out.Fail("usage: todo session set <token>")
			return ExitUsage
		}
		if err := store.Set(args[1]); err != nil {
			out.Fail("session: " + err.Error())
			return ExitError
		}
		out.OK("session token saved")
	case "clear":
		if err := store.Delete(); err != nil {
			out.Fail("session: " + err.Error())
			return ExitError
		}
		out.OK("session token cleared")
	case "status":
		tok, err := store.Get()
		if err != nil {
			out.Fail("session: " + err.Error())
			return ExitError
		}
		if tok == nil {
			out.Info("no session token")
			return ExitOK
		}
		line := fmt.Sprintf("token %s from %s", mask(tok.Value), tok.Source)
		if !tok.SavedAt.IsZero() {
			line += ", saved " + tok.SavedAt.Local().Format("2006-01-02 15:04")
		}
		out.Info(line)
	default:
		out.Fail("unknown session command: " + args[0])
		return ExitUsage
	}
	return ExitOK
}

// -------------- argument helpers --------------

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments, and returns the positionals.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return pos, nil
		}
		pos = append(pos, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func (a *app) oneIndex(name string, args []string) (int, int) {
	if len(args) != 1 {
		a.out.Fail("usage: todo " + name + " <index>")
		return 0, ExitUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		a.out.Fail(name + ": not a number: " + args[0])
		return 0, ExitUsage
	}
	return n, ExitOK
}

// resolve maps a 1-based index onto the current server listing.
func (a *app) resolve(ctx context.Context, n int) (model.Todo, int) {
	todos, ok := a.service(a.out).List(ctx)
	if !ok {
		return model.Todo{}, ExitError
	}
	if !a.inRange(n, len(todos)) {
		return model.Todo{}, ExitUsage
	}
	return todos[n-1], ExitOK
}

func (a *app) inRange(n, have int) bool {
	if n >= 1 && n <= have {
		return true
	}
	a.out.Fail(fmt.Sprintf("index out of range: have %d, got %d", have, n))
	a.out.Hint("Hint: run `todo print` to see valid indexes")
	return false
}

func mask(token string) string {
	r := []rune(token)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:4]) + strings.Repeat("*", len(r)-4)
}
