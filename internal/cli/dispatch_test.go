package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"taskflow/internal/cli"
	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
	"taskflow/internal/session"
	"taskflow/internal/testutil"
)

// chdir changes the working directory to dir and restores it when the test
// finishes (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

// isolate points the default config directory and the working directory at
// temporary directories and clears backend environment variables.
func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	for _, key := range append([]string{config.EnvTimeout, config.EnvLogLevel, config.EnvListen, config.EnvCookieSecret}, config.URLEnvVars...) {
		t.Setenv(key, "")
	}
	chdir(t, t.TempDir())
	return xdg + "/" + config.AppName
}

func run(t *testing.T, svc *testutil.FakeService, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	var outBuf, errBuf bytes.Buffer
	code = dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	isolate(t)

	_, stderr, code := run(t, testutil.NewFakeService(), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	isolate(t)

	_, stderr, code := run(t, testutil.NewFakeService(), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	isolate(t)

	stdout, stderr, code := run(t, testutil.NewFakeService(), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionUsesURLFlag(t *testing.T) {
	isolate(t)

	stdout, _, code := run(t, testutil.NewFakeService(), "version", "--url", "https://tasks.example.com")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "taskflow 0.1.0 (backend https://tasks.example.com)\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestDispatcher_VersionUsesEnvURL(t *testing.T) {
	isolate(t)
	t.Setenv("STRAPI_URL", "http://strapi:1337")

	stdout, _, _ := run(t, testutil.NewFakeService(), "version")

	if stdout != "taskflow 0.1.0 (backend http://strapi:1337)\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	isolate(t)

	_, stderr, code := run(t, testutil.NewFakeService(), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	isolate(t)

	_, stderr, code := run(t, testutil.NewFakeService(), "list", "--status")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -status\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_InvalidLogLevel(t *testing.T) {
	isolate(t)
	t.Setenv(config.EnvLogLevel, "loud")

	_, stderr, code := run(t, testutil.NewFakeService(), "version")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_NeedsAuthWithoutSession(t *testing.T) {
	isolate(t)
	svc := testutil.NewFakeService()

	_, stderr, code := run(t, svc, "list", "--config", t.TempDir())

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: taskflow login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("ListTasks") != 0 {
		t.Error("expected no backend call")
	}
}

func TestDispatcher_NeedsAuthExpiredSession(t *testing.T) {
	isolate(t)
	svc := testutil.NewFakeService()
	user := svc.AddUser("alice", "alice@example.com", "secret")
	dir := t.TempDir()
	s := svc.SessionFor(user)
	s.ExpiresAt = s.IssuedAt.Add(-testutil.TokenLifetime)
	if err := session.NewFileStore(dir + "/" + config.SessionFile).Save(s); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := run(t, svc, "list", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session expired (run: taskflow login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_LoginThenList(t *testing.T) {
	isolate(t)
	svc := testutil.NewFakeService()
	user := svc.AddUser("alice", "alice@example.com", "secret")
	svc.AddTask(user.ID, service.Task{Title: "Buy milk", Status: service.StatusTodo})
	dir := t.TempDir()

	if _, stderr, code := run(t, svc, "login", "--config", dir, "--email", "alice@example.com", "--password", "secret"); code != exitcode.Success {
		t.Fatalf("login failed (%d): %s", code, stderr)
	}

	stdout, stderr, code := run(t, svc, "ls", "--config", dir)
	if code != exitcode.Success {
		t.Fatalf("list failed (%d): %s", code, stderr)
	}
	if !strings.Contains(stdout, "Buy milk") {
		t.Errorf("expected task in output, got %q", stdout)
	}
}

func TestDispatcher_NoArgsWithoutSession(t *testing.T) {
	isolate(t)

	_, stderr, code := run(t, testutil.NewFakeService())

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: taskflow login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	dir := isolate(t)
	svc := testutil.NewFakeService()
	user := svc.AddUser("alice", "alice@example.com", "secret")
	svc.AddTask(user.ID, service.Task{Title: "Buy milk", Status: service.StatusTodo})
	if err := session.NewFileStore(dir + "/" + config.SessionFile).Save(svc.SessionFor(user)); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := run(t, svc)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Buy milk") {
		t.Errorf("expected task in output, got %q", stdout)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	isolate(t)
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return nil, errors.New("invalid backend URL")
	})

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"version"}, &stdout, &stderr)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr.String() != "error: backend error: invalid backend URL\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}
