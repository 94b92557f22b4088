package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/board"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	flags taskFlags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskflow add --due <YYYY-MM-DD> [--status <s>] [--priority <p>] [--difficulty <d>] [--description <text>] [--title <title> | <title...>]"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags.register(fs)
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		if c.flags.title.set {
			fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
			return exitcode.UserError
		}
		c.flags.title = optional{value: strings.Join(args, " "), set: true}
	}

	b := board.New(ctx)
	defer b.Close()

	d := board.NewCreateDialog(svc, b)
	d.Open()
	c.flags.apply(&d.Form)

	task, err := d.Submit(ctx)
	if err != nil {
		return report(cfg, errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %d\n", task.ID)
	}
	return exitcode.Success
}
