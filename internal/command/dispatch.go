package command

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"tracenav/internal/session"
)

var errorPrefix = color.New(color.FgRed, color.Bold)

// Dispatcher interprets the interactive shell's command lines. One
// dispatcher serves one session; lines are handled strictly in order.
type Dispatcher struct {
	Debugger *session.Debugger
	Exec     *Executor
	Out      io.Writer
	ErrOut   io.Writer
}

// HandleLine executes one command line. It returns false when the shell
// should exit. Usage errors go to ErrOut with fixed text; they never
// terminate the shell.
func (d *Dispatcher) HandleLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		// Bare repeat: continue paging the last dump.
		if d.Exec.hasLast {
			d.report(d.Exec.Repeat())
		}
		return true
	}

	switch fields[0] {
	case "quit", "exit", "q":
		return false

	case "help":
		d.printHelp()

	case "target":
		if len(fields) == 3 && fields[1] == "create" {
			d.report(d.Debugger.CreateTarget(fields[2]))
		} else {
			d.reportf("usage: target create <path>")
		}

	case "process":
		if len(fields) == 2 && fields[1] == "launch" {
			d.report(d.Debugger.Launch())
		} else {
			d.reportf("usage: process launch")
		}

	case "run", "r":
		d.report(d.Debugger.Launch())

	case "trace":
		if len(fields) == 3 && fields[1] == "load" {
			d.traceLoad(fields[2])
		} else {
			d.reportf("usage: trace load <path>")
		}

	case "thread":
		if len(fields) == 3 && fields[1] == "select" {
			d.threadSelect(fields[2])
		} else {
			d.reportf("usage: thread select <index>")
		}

	case "info":
		d.printInfo()

	case "dump":
		req, err := ParseDump(fields[1:])
		if err != nil {
			d.report(err)
			return true
		}
		d.report(d.Exec.Dump(req))

	default:
		d.reportf("unknown command: %s (try 'help')", fields[0])
	}
	return true
}

func (d *Dispatcher) traceLoad(path string) {
	s, err := d.Debugger.LoadTrace(path)
	if err != nil {
		d.report(err)
		return
	}
	threads := 0
	for _, p := range s.Processes {
		threads += len(p.Threads)
	}
	fmt.Fprintf(d.Out, "%s trace loaded: %d process(es), %d thread(s)\n", s.Type, len(s.Processes), threads)
}

func (d *Dispatcher) threadSelect(arg string) {
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 1 {
		d.reportf("no thread with index: %q", arg)
		return
	}
	d.report(d.Debugger.SelectThread(idx))
}

func (d *Dispatcher) printInfo() {
	s, err := d.Debugger.Trace()
	if err != nil {
		d.report(err)
		return
	}
	fmt.Fprintf(d.Out, "trace: %s\n", s.Type)
	for _, p := range s.Processes {
		fmt.Fprintf(d.Out, "process %d\n", p.PID)
		for _, th := range p.Threads {
			n, known := th.Source.Len()
			if known {
				fmt.Fprintf(d.Out, "  thread #%d: tid = %d, %d items", th.Index, th.TID, n)
			} else {
				fmt.Fprintf(d.Out, "  thread #%d: tid = %d", th.Index, th.TID)
			}
			if st, ok := d.Exec.LastState(th.TID); ok {
				if id, rendered := st.LastRendered(); rendered {
					fmt.Fprintf(d.Out, ", last dumped id = %d", id)
				}
			}
			fmt.Fprintln(d.Out)
		}
	}
}

func (d *Dispatcher) printHelp() {
	fmt.Fprint(d.Out, `commands:
  target create <path>   record a target
  process launch         mark the target's process as running
  trace load <path>      load a trace session file
  thread select <n>      select the current thread (1-based)
  info                   show the loaded session
  dump [n] [flags]       dump trace items; see 'dump --help'
  <empty line>           repeat the last dump, continuing where it stopped
  quit                   leave the shell
`)
}

func (d *Dispatcher) report(err error) {
	if err != nil {
		fmt.Fprintf(d.ErrOut, "%s %s\n", errorPrefix.Sprint("error:"), err)
	}
}

func (d *Dispatcher) reportf(format string, args ...interface{}) {
	fmt.Fprintf(d.ErrOut, "%s %s\n", errorPrefix.Sprint("error:"), fmt.Sprintf(format, args...))
}
