package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

// NewHelpCmd returns a help command listing the commands of r.
func NewHelpCmd(r *Registry) *HelpCmd {
	return &HelpCmd{registry: r}
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskflow help [command]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	r := c.registry
	if r == nil {
		r = DefaultRegistry
	}

	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	if len(args) == 1 {
		cmd, ok := r.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "Usage:\n  %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
		}
		return exitcode.Success
	}

	fmt.Fprint(out, "Usage:\n  taskflow                List tasks (or ask to log in)\n  taskflow <command> [flags]\n\nCommands:\n")
	for _, cmd := range r.All() {
		names := strings.Join(append([]string{cmd.Name()}, cmd.Aliases()...), ", ")
		fmt.Fprintf(out, "  %-14s %s\n", names, cmd.Synopsis())
	}
	fmt.Fprint(out, fieldFlagHelp())
	return exitcode.Success
}

const flagHelp = `
Field flags (add, edit):
  --title, -t <title>
  --description, -d <text>
  --status, -s <%s>
  --priority, -p <%s>
  --difficulty <%s>
  --due <YYYY-MM-DD>

Defaults for add: status %s, priority %s, difficulty %s.

Common flags:
  --config <dir>   Override config directory
  --url <url>      Override the backend URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Run 'taskflow help <command>' for the usage of one command.
`

// fieldFlagHelp fills flagHelp with the accepted enum spellings.
func fieldFlagHelp() string {
	statuses := make([]string, len(service.Statuses))
	for i, s := range service.Statuses {
		statuses[i] = string(s)
	}
	priorities := make([]string, len(service.Priorities))
	for i, p := range service.Priorities {
		priorities[i] = p.Flag()
	}
	difficulties := make([]string, len(service.Difficulties))
	for i, d := range service.Difficulties {
		difficulties[i] = d.Flag()
	}
	return fmt.Sprintf(flagHelp,
		strings.Join(statuses, "|"),
		strings.Join(priorities, "|"),
		strings.Join(difficulties, "|"),
		service.StatusTodo, service.PriorityMedium.Flag(), service.DifficultyMedium.Flag(),
	)
}
