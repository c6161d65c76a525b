package command

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"tracenav/internal/config"
	"tracenav/internal/session"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *strings.Builder, *strings.Builder) {
	t.Helper()
	color.NoColor = true
	dbg := session.NewDebugger(nil)
	var out, errOut strings.Builder
	exec := NewExecutor(dbg, config.Default(), &out)
	return &Dispatcher{Debugger: dbg, Exec: exec, Out: &out, ErrOut: &errOut}, &out, &errOut
}

func TestDispatchPreconditionErrors(t *testing.T) {
	d, _, errOut := newTestDispatcher(t)

	if !d.HandleLine("dump") {
		t.Fatalf("dump should not exit the shell")
	}
	want := "error: invalid target, create a target using the 'target create' command\n"
	if got := errOut.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDispatchQuit(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	for _, line := range []string{"quit", "exit", "q"} {
		if d.HandleLine(line) {
			t.Errorf("%q should exit the shell", line)
		}
	}
}

func TestDispatchTraceLoadAndDump(t *testing.T) {
	d, out, errOut := newTestDispatcher(t)
	path := writeLinearSession(t, 5)

	if !d.HandleLine("trace load " + path) {
		t.Fatalf("trace load should not exit")
	}
	if got := out.String(); got != "intel-pt trace loaded: 1 process(es), 1 thread(s)\n" {
		t.Fatalf("load report = %q", got)
	}

	out.Reset()
	d.HandleLine("dump --forwards -c 2")
	if errOut.Len() != 0 {
		t.Fatalf("dump failed: %s", errOut.String())
	}
	if !strings.HasPrefix(out.String(), "thread #1: tid = 101\n") {
		t.Errorf("dump output = %q", out.String())
	}

	// An empty line repeats, continuing from id 2.
	out.Reset()
	d.HandleLine("")
	if got := renderedIDs(t, out.String()); len(got) != 2 || got[0] != 2 {
		t.Errorf("repeat ids = %v", got)
	}
}

func TestDispatchEmptyLineWithoutPriorDumpIsSilent(t *testing.T) {
	d, out, errOut := newTestDispatcher(t)

	if !d.HandleLine("") {
		t.Fatalf("empty line should not exit")
	}
	if out.Len() != 0 || errOut.Len() != 0 {
		t.Errorf("empty line produced output: %q / %q", out.String(), errOut.String())
	}
}

func TestDispatchThreadSelect(t *testing.T) {
	d, _, errOut := newTestDispatcher(t)
	d.HandleLine("trace load " + writeLinearSession(t, 5))

	d.HandleLine("thread select bogus")
	if got := errOut.String(); got != "error: no thread with index: \"bogus\"\n" {
		t.Errorf("got %q", got)
	}

	errOut.Reset()
	d.HandleLine("thread select 1")
	if errOut.Len() != 0 {
		t.Errorf("valid select failed: %s", errOut.String())
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	d, _, errOut := newTestDispatcher(t)

	d.HandleLine("frobnicate")
	if !strings.Contains(errOut.String(), "unknown command: frobnicate") {
		t.Errorf("got %q", errOut.String())
	}
}

func TestDispatchUsageErrors(t *testing.T) {
	d, _, errOut := newTestDispatcher(t)

	tests := []struct {
		line string
		want string
	}{
		{"target", "usage: target create <path>"},
		{"process", "usage: process launch"},
		{"trace", "usage: trace load <path>"},
		{"thread", "usage: thread select <index>"},
	}
	for _, tt := range tests {
		errOut.Reset()
		d.HandleLine(tt.line)
		if !strings.Contains(errOut.String(), tt.want) {
			t.Errorf("%q: got %q, want %q", tt.line, errOut.String(), tt.want)
		}
	}
}

func TestDispatchInfo(t *testing.T) {
	d, out, _ := newTestDispatcher(t)
	d.HandleLine("trace load " + writeLinearSession(t, 5))

	out.Reset()
	d.HandleLine("info")
	got := out.String()
	if !strings.Contains(got, "trace: intel-pt") ||
		!strings.Contains(got, "process 7") ||
		!strings.Contains(got, "thread #1: tid = 101, 5 items") {
		t.Errorf("info output = %q", got)
	}
	if strings.Contains(got, "last dumped id") {
		t.Errorf("no dump ran yet, got %q", got)
	}

	// After a dump, info reports where the paging cursor stopped.
	d.HandleLine("dump --forwards -c 2")
	out.Reset()
	d.HandleLine("info")
	got = out.String()
	if !strings.Contains(got, "thread #1: tid = 101, 5 items, last dumped id = 1") {
		t.Errorf("info output = %q", got)
	}
}
