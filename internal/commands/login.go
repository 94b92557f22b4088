package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/form"
	"taskflow/internal/service"
	"taskflow/internal/session"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// credentialFlags are shared by login and register.
type credentialFlags struct {
	email         string
	password      string
	passwordStdin bool
	stdin         io.Reader
}

func (f *credentialFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.email, "email", "", "")
	fs.StringVar(&f.email, "e", "", "")
	fs.StringVar(&f.password, "password", "", "")
	fs.BoolVar(&f.passwordStdin, "password-stdin", false, "")
}

// readPassword returns the --password value, or the first line of stdin
// with --password-stdin.
func (f *credentialFlags) readPassword() (string, error) {
	if !f.passwordStdin {
		return f.password, nil
	}
	if f.password != "" {
		return "", fmt.Errorf("--password and --password-stdin are mutually exclusive")
	}
	in := f.stdin
	if in == nil {
		in = os.Stdin
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// LoginCmd implements the login command.
type LoginCmd struct {
	credentialFlags
}

// SetStdin sets the reader used by --password-stdin (for testing).
func (c *LoginCmd) SetStdin(r io.Reader) { c.stdin = r }

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in and store the session" }
func (c *LoginCmd) Usage() string {
	return "taskflow login --email <email> [--password <password> | --password-stdin]"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	c.credentialFlags.register(fs)
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	password, err := c.readPassword()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	creds, err := form.Login{Email: c.email, Password: password}.Credentials()
	if err != nil {
		return report(cfg, errOut, err)
	}

	auth, err := svc.Login(ctx, creds)
	if err != nil {
		return report(cfg, errOut, err)
	}
	return saveSession(ctx, cfg, auth, out, errOut)
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	credentialFlags
	username string
}

// SetStdin sets the reader used by --password-stdin (for testing).
func (c *RegisterCmd) SetStdin(r io.Reader) { c.stdin = r }

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string {
	return "taskflow register --username <name> --email <email> [--password <password> | --password-stdin]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	c.credentialFlags.register(fs)
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	password, err := c.readPassword()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	reg, err := form.Register{Username: c.username, Email: c.email, Password: password}.Registration()
	if err != nil {
		return report(cfg, errOut, err)
	}

	auth, err := svc.Register(ctx, reg)
	if err != nil {
		return report(cfg, errOut, err)
	}
	return saveSession(ctx, cfg, auth, out, errOut)
}

// saveSession stores the session of a successful login or registration.
func saveSession(ctx context.Context, cfg *config.Config, auth service.Auth, out, errOut io.Writer) int {
	s, err := session.New(auth)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	store := sessionStore(cfg)
	if err := store.Save(s); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}
	log.FromContext(ctx).Debug("session saved", "path", store.Path(), "user", s.Username, "expires", s.ExpiresAt)

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
