package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"taskflow/internal/exitcode"
)

func TestRegistry_FindByAlias(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&RmCmd{}); err != nil {
		t.Fatal(err)
	}

	cmd, ok := r.Find("delete")
	if !ok || cmd.Name() != "rm" {
		t.Errorf("expected alias delete to resolve to rm, got %v, %v", cmd, ok)
	}
	if _, ok := r.Find("remove"); ok {
		t.Error("expected unknown name to miss")
	}
}

func TestRegistry_Duplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&AddCmd{}); err != nil {
		t.Fatal(err)
	}

	if err := r.Register(&AddCmd{}); err == nil {
		t.Error("expected duplicate name to fail")
	}
	clash := &StatusCmd{name: "create"}
	if err := r.Register(clash); err == nil {
		t.Error("expected name clashing with an alias to fail")
	}
}

func TestRegistry_AllSortedOnce(t *testing.T) {
	r := NewRegistry()
	for _, c := range []Command{&RmCmd{}, &AddCmd{}, &ListCmd{}} {
		if err := r.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	var names []string
	for _, c := range r.All() {
		names = append(names, c.Name())
	}
	if got := strings.Join(names, ","); got != "add,list,rm" {
		t.Errorf("expected add,list,rm, got %s", got)
	}
}

func TestHelp_ListsRegisteredCommands(t *testing.T) {
	r := NewRegistry()
	for _, c := range []Command{&AddCmd{}, &RmCmd{}} {
		if err := r.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	var out, errOut bytes.Buffer
	code := NewHelpCmd(r).Run(context.Background(), nil, nil, nil, &out, &errOut)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	for _, want := range []string{"  add, create    Create a task\n", "  rm, delete     Delete a task\n"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in help, got:\n%s", want, out.String())
		}
	}
}

func TestHelp_OneCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := NewHelpCmd(DefaultRegistry).Run(context.Background(), nil, nil, []string{"ls"}, &out, &errOut)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	want := "Usage:\n  taskflow list [--status <todo|doing|done>]\n\nList tasks\nAliases: ls\n"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}

func TestHelp_UnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := NewHelpCmd(DefaultRegistry).Run(context.Background(), nil, nil, []string{"frobnicate"}, &out, &errOut)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errOut.String() != "error: unknown command: frobnicate\n" {
		t.Errorf("unexpected stderr %q", errOut.String())
	}
}

func TestHelp_FieldFlagValues(t *testing.T) {
	var out, errOut bytes.Buffer
	NewHelpCmd(NewRegistry()).Run(context.Background(), nil, nil, nil, &out, &errOut)

	for _, want := range []string{
		"--status, -s <todo|doing|done>\n",
		"--priority, -p <low|medium|high|very-high>\n",
		"--difficulty <very-easy|easy|medium|hard|very-hard>\n",
		"Defaults for add: status todo, priority medium, difficulty medium.\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in help, got:\n%s", want, out.String())
		}
	}
}
