package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/gate"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/session"
)

var errNotLoggedIn = errors.New("not logged in, run: zaloga login")

// requireLogin applies the authenticated route class to a terminal command.
func requireLogin(sess *session.Session) error {
	if !gate.Decide(gate.Authenticated, sess).Admit {
		return errNotLoggedIn
	}
	return nil
}

func cmdLogin(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	var email, password string
	fs.StringVar(&email, "email", "", "")
	fs.StringVar(&email, "e", "", "")
	fs.StringVar(&password, "password", "", "")
	fs.StringVar(&password, "p", "", "")

	closeLog, err := e.parse(fs, args, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer closeLog()

	if email == "" {
		return errors.New("-email is required")
	}
	if password == "" {
		fmt.Fprint(e.stdout, "Password: ")
		if password, err = readLine(e.stdin); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
	}

	sess, closeState, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer closeState()

	resp, err := e.backend().Login(ctx, backend.LoginRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %s", backend.Message(err, err.Error()))
	}
	if err := sess.Establish(ctx, resp.Token, resp.Role); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	fmt.Fprintf(e.stdout, "Logged in as %s (%s)\n", email, model.RoleName(resp.Role))
	return nil
}

func cmdLogout(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	closeLog, err := e.parse(fs, args, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer closeLog()

	sess, closeState, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer closeState()

	if err := sess.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	fmt.Fprintln(e.stdout, "Logged out")
	return nil
}

func cmdWhoami(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	closeLog, err := e.parse(fs, args, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer closeLog()

	sess, closeState, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer closeState()

	if err := requireLogin(sess); err != nil {
		return err
	}

	user, err := e.backend().CurrentUser(ctx, sess.Credential())
	if err != nil {
		if backend.IsUnauthorized(err) {
			return fmt.Errorf("stored credential was rejected: %w", errNotLoggedIn)
		}
		return fmt.Errorf("fetching current user: %w", err)
	}

	role := user.Role
	if role == "" {
		role = sess.Role()
	}

	w := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", user.Name)
	fmt.Fprintf(w, "Email:\t%s\n", user.Email)
	fmt.Fprintf(w, "Role:\t%s\n", model.RoleName(role))

	info, err := auth.Inspect(sess.Credential())
	switch {
	case err == nil && !info.ExpiresAt.IsZero():
		expiry := info.ExpiresAt.Format("2006-01-02 15:04")
		if info.Expired(e.now()) {
			expiry += " (expired)"
		}
		fmt.Fprintf(w, "Expires:\t%s\n", expiry)
	case err != nil && !errors.Is(err, auth.ErrNotJWT):
		slog.Warn("failed to read credential claims", "error", err)
	}
	return w.Flush()
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
