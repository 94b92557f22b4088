package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"

	"github.com/charmbracelet/log"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
	"taskflow/internal/web"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command.
type ServeCmd struct {
	listen string

	// listener replaces listening on an address (for testing).
	listener net.Listener
}

// SetListener makes the next run serve on ln (for testing).
func (c *ServeCmd) SetListener(ln net.Listener) {
	c.listener = ln
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve the browser front end" }
func (c *ServeCmd) Usage() string     { return "taskflow serve [--listen <addr>]" }
func (c *ServeCmd) NeedsAuth() bool   { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listen, "listen", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	addr := c.listen
	if addr == "" {
		addr = cfg.Settings.Web.Listen
	}

	srv, err := web.New(ctx, svc, web.Options{CookieSecret: cfg.Settings.Web.CookieSecret})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	if cfg.Settings.Web.CookieSecret == "" {
		log.FromContext(ctx).Warn("no cookie_secret configured; sessions end when the server stops")
	}

	if c.listener != nil {
		ln := c.listener
		c.listener = nil
		err = srv.Serve(ctx, ln)
	} else {
		err = srv.ListenAndServe(ctx, addr)
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
