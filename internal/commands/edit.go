package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/board"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
)

func init() {
	Register(&EditCmd{})
	Register(&StatusCmd{name: "done", status: service.StatusDone, synopsis: "Mark a task as done"})
	Register(&StatusCmd{name: "start", status: service.StatusDoing, synopsis: "Mark a task as in progress"})
}

// EditCmd implements the edit command.
type EditCmd struct {
	flags taskFlags
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "taskflow edit <id> [--title <title>] [--description <text>] [--status <s>] [--priority <p>] [--difficulty <d>] [--due <YYYY-MM-DD>]"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags.register(fs)
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	patch, err := c.flags.changes().Patch()
	if err != nil {
		return report(cfg, errOut, err)
	}
	if patch.IsEmpty() {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}
	return runEdit(ctx, cfg, svc, id, patch, out, errOut)
}

// StatusCmd moves a task to a fixed status.
type StatusCmd struct {
	name     string
	status   service.Status
	synopsis string
}

func (c *StatusCmd) Name() string      { return c.name }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return c.synopsis }
func (c *StatusCmd) Usage() string     { return "taskflow " + c.name + " <id>" }
func (c *StatusCmd) NeedsAuth() bool   { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	status := c.status
	return runEdit(ctx, cfg, svc, id, service.TaskPatch{Status: &status}, out, errOut)
}

// runEdit applies patch to the task with the given id. Only the patched
// fields are sent, so fields missing on the stored task stay missing.
func runEdit(ctx context.Context, cfg *config.Config, svc service.Service, id int, patch service.TaskPatch, out, errOut io.Writer) int {
	b := board.New(ctx)
	defer b.Close()

	task, code := findTask(ctx, cfg, svc, b, id, errOut)
	if code != exitcode.Success {
		return code
	}

	if _, err := board.UpdateTask(ctx, svc, b, task, patch); err != nil {
		return reportTask(cfg, errOut, id, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
