package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/board"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/output"
	"taskflow/internal/service"
)

func init() {
	Register(&ListCmd{})
	Register(&ShowCmd{})
}

// ListCmd implements the list command.
// Handles both `taskflow` (no args, when logged in) and `taskflow list`.
type ListCmd struct {
	status string
}

// SetStatus sets the status filter (for testing).
func (c *ListCmd) SetStatus(status string) {
	c.status = status
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "taskflow list [--status <todo|doing|done>]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	var status service.Status
	if c.status != "" {
		status = service.NormalizeStatus(c.status)
		if !status.Valid() {
			fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status)
			return exitcode.UserError
		}
	}

	b := board.New(ctx)
	defer b.Close()
	if err := b.Load(ctx, svc); err != nil {
		return report(cfg, errOut, err)
	}

	tasks := b.Filter(status)
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, output.NoTasks)
		}
		return exitcode.Success
	}
	output.FormatTasks(out, tasks)
	return exitcode.Success
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show one task" }
func (c *ShowCmd) Usage() string     { return "taskflow show <id>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	b := board.New(ctx)
	defer b.Close()
	task, code := findTask(ctx, cfg, svc, b, id, errOut)
	if code != exitcode.Success {
		return code
	}
	output.FormatCard(out, task)
	return exitcode.Success
}

// findTask loads the board and looks up id in it.
func findTask(ctx context.Context, cfg *config.Config, svc service.Service, b *board.Board, id int, errOut io.Writer) (service.Task, int) {
	if err := b.Load(ctx, svc); err != nil {
		return service.Task{}, report(cfg, errOut, err)
	}
	task, ok := b.Find(id)
	if !ok {
		return service.Task{}, reportTask(cfg, errOut, id, service.ErrNotFound)
	}
	return task, exitcode.Success
}
