package commands_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"taskflow/internal/commands"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
	"taskflow/internal/session"
)

func TestLoginCommand_SavesSession(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.runCtx(t, context.Background(), &commands.LoginCmd{},
		"--email", "alice@example.com", "--password", "secret")

	expectCode(t, code, exitcode.Success)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}

	info, err := os.Stat(h.cfg.SessionPath())
	if err != nil {
		t.Fatalf("session file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected session file mode 0600, got %o", perm)
	}

	s, err := session.Current(session.NewFileStore(h.cfg.SessionPath()), time.Now())
	if err != nil {
		t.Fatalf("stored session unusable: %v", err)
	}
	if s.Username != "alice" || s.UserID != h.user.ID {
		t.Errorf("unexpected session user %q/%d", s.Username, s.UserID)
	}
	if s.ExpiresAt.IsZero() {
		t.Error("expected expiry read from token")
	}
}

func TestLoginCommand_WrongPassword(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.runCtx(t, context.Background(), &commands.LoginCmd{},
		"-e", "alice@example.com", "--password", "nope")

	expectCode(t, code, exitcode.AuthError)
	if !strings.Contains(stderr, "invalid identifier or password") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if _, err := os.Stat(h.cfg.SessionPath()); !os.IsNotExist(err) {
		t.Errorf("expected no session file, got %v", err)
	}
}

func TestLoginCommand_ValidationSkipsBackend(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.runCtx(t, context.Background(), &commands.LoginCmd{},
		"--email", "not-an-email", "--password", "pw")

	expectCode(t, code, exitcode.UserError)
	want := "error: email: invalid email\nerror: password: password must have at least 3 characters\n"
	if stderr != want {
		t.Errorf("expected %q, got %q", want, stderr)
	}
	if h.svc.Calls("Login") != 0 {
		t.Error("expected no backend call")
	}
}

func TestLoginCommand_PasswordStdin(t *testing.T) {
	h := newHarness(t)
	cmd := &commands.LoginCmd{}
	cmd.SetStdin(strings.NewReader("secret\n"))

	stdout, stderr, code := h.runCtx(t, context.Background(), cmd,
		"--email", "alice@example.com", "--password-stdin")

	expectCode(t, code, exitcode.Success)
	if stdout != "ok\n" || stderr != "" {
		t.Errorf("unexpected output %q / %q", stdout, stderr)
	}
}

func TestLoginCommand_PasswordTwice(t *testing.T) {
	h := newHarness(t)
	cmd := &commands.LoginCmd{}
	cmd.SetStdin(strings.NewReader("secret\n"))

	_, stderr, code := h.runCtx(t, context.Background(), cmd,
		"--email", "alice@example.com", "--password", "x", "--password-stdin")

	expectCode(t, code, exitcode.UserError)
	if !strings.Contains(stderr, "mutually exclusive") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRegisterCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.runCtx(t, context.Background(), &commands.RegisterCmd{},
		"-u", "bob", "--email", "bob@example.com", "--password", "hunter2")

	expectCode(t, code, exitcode.Success)
	if stdout != "ok\n" || stderr != "" {
		t.Errorf("unexpected output %q / %q", stdout, stderr)
	}
	s, err := session.NewFileStore(h.cfg.SessionPath()).Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Username != "bob" || s.Email != "bob@example.com" {
		t.Errorf("unexpected session %+v", s)
	}
}

func TestRegisterCommand_Taken(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.runCtx(t, context.Background(), &commands.RegisterCmd{},
		"-u", "alice", "--email", "other@example.com", "--password", "hunter2")

	expectCode(t, code, exitcode.AuthError)
	if !strings.Contains(stderr, "already taken") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if _, err := os.Stat(h.cfg.SessionPath()); !os.IsNotExist(err) {
		t.Errorf("expected no session file, got %v", err)
	}
}

func TestRegisterCommand_BackendDown(t *testing.T) {
	h := newHarness(t)
	h.svc.RegisterErr = errors.New("dial tcp: connection refused")

	_, stderr, code := h.runCtx(t, context.Background(), &commands.RegisterCmd{},
		"-u", "bob", "--email", "bob@example.com", "--password", "hunter2")

	expectCode(t, code, exitcode.BackendError)
	if stderr != "error: backend error: dial tcp: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLogoutCommand_RemovesSession(t *testing.T) {
	h := newHarness(t)
	store := session.NewFileStore(h.cfg.SessionPath())
	if err := store.Save(h.svc.SessionFor(h.user)); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := h.run(t, &commands.LogoutCmd{})

	expectCode(t, code, exitcode.Success)
	if stdout != "ok\n" || stderr != "" {
		t.Errorf("unexpected output %q / %q", stdout, stderr)
	}
	if _, err := store.Load(); !errors.Is(err, service.ErrNoSession) {
		t.Errorf("expected no stored session, got %v", err)
	}
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.LogoutCmd{})

	expectCode(t, code, exitcode.Success)
	if stdout != "not logged in\n" || stderr != "" {
		t.Errorf("unexpected output %q / %q", stdout, stderr)
	}
}

func TestLogoutCommand_NotLoggedInQuiet(t *testing.T) {
	h := newHarness(t)
	h.cfg.Quiet = true

	stdout, _, code := h.run(t, &commands.LogoutCmd{})

	expectCode(t, code, exitcode.Success)
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
}
