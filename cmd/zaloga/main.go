package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/config"
	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/session"
	"github.com/erazemk/zaloga/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	min    slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.min
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. Records below level are
// dropped, INFO/WARN go to stdout and ERROR goes to stderr. If logPath is
// non-empty, all levels are also written to that file. The returned
// function closes the log file.
func setupLogger(logPath string, level slog.Level) (func(), error) {
	opts := &slog.HandlerOptions{Level: level}

	cleanup := func() {}

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		min:    level,
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

const usage = `Usage: zaloga <command> [flags]

Commands:
  serve     run the web client
  login     sign in and store the session
  logout    forget the stored session
  whoami    show the signed-in user
  series    print one month of daily transaction totals
  watch     print the series for filter changes read from stdin

Flags (all commands):
  -u, -api <url>          backend API URL (default: http://localhost:5050/api)
  -s, -state <path>       session state file (default: zaloga-state.sqlite3)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

serve:
  -a, -addr <host:port>   listen address (default: :8080)
  -secure-cookies         set the Secure attribute on cookies

login:
  -e, -email <email>      account email
  -p, -password <pw>      password (read from stdin when omitted)

series:
  -source <name>          supply or equipment (default: supply)
  -m, -month <1-12>       month (default: current)
  -y, -year <year>        year (default: current)
  -t, -type <kind>        CHECK_IN, CHECK_OUT or ALL (default: ALL)
  -subject <id>           supply or equipment id (default: all)
  -png <path>             also write the chart to a PNG file

watch reads lines such as "month=4 type=CHECK_OUT" and prints the series
of the newest selection.

Every flag can also be set in the environment or a .env file
(ZALOGA_API_URL, ZALOGA_STATE, ZALOGA_LOG, ZALOGA_ADDR, ZALOGA_SECURE_COOKIES,
ZALOGA_REQUEST_TIMEOUT).
`

// env is what every command runs against.
type env struct {
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"serve":  cmdServe,
	"login":  cmdLogin,
	"logout": cmdLogout,
	"whoami": cmdWhoami,
	"series": cmdSeries,
	"watch":  cmdWatch,
}

func main() {
	e := &env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, now: time.Now}
	os.Exit(run(context.Background(), os.Args[1:], e))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, e *env) int {
	if len(args) == 0 {
		fmt.Fprint(e.stdout, usage)
		return 1
	}

	name := args[0]
	switch name {
	case "-h", "-help", "--help", "help":
		fmt.Fprint(e.stdout, usage)
		return 0
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(e.stderr, "unknown command: %s\n", name)
		fmt.Fprint(e.stdout, usage)
		return 1
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(e.stderr, "error: %v\n", err)
		return 1
	}
	e.cfg = cfg

	if err := cmd(ctx, e, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(e.stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// parse binds the shared flags, parses args, validates the resulting
// configuration and starts logging at level.
func (e *env) parse(fs *flag.FlagSet, args []string, level slog.Level) (func(), error) {
	fs.StringVar(&e.cfg.APIURL, "api", e.cfg.APIURL, "")
	fs.StringVar(&e.cfg.APIURL, "u", e.cfg.APIURL, "")
	fs.StringVar(&e.cfg.StatePath, "state", e.cfg.StatePath, "")
	fs.StringVar(&e.cfg.StatePath, "s", e.cfg.StatePath, "")
	fs.StringVar(&e.cfg.LogFile, "log", e.cfg.LogFile, "")
	fs.StringVar(&e.cfg.LogFile, "l", e.cfg.LogFile, "")

	fs.SetOutput(e.stderr)
	fs.Usage = func() { fmt.Fprint(e.stdout, usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	return setupLogger(e.cfg.LogFile, level)
}

func (e *env) backend() *backend.Client {
	return backend.New(e.cfg.APIURL, e.cfg.RequestTimeout)
}

// session loads the terminal session from the state file. The returned
// function closes the file.
func (e *env) session(ctx context.Context) (*session.Session, func(), error) {
	database, err := db.Open(e.cfg.StatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening state file: %w", err)
	}
	sess := session.Load(ctx, store.New(database), session.DefaultObfuscator())
	return sess, func() { database.Close() }, nil
}
