package session

import (
	"errors"
	"fmt"
	"os"

	"tracenav/trace"
)

// The dump command's precondition failures, in the order they are checked.
// Callers grep for these exact strings.
var (
	ErrNoTarget  = errors.New("invalid target, create a target using the 'target create' command")
	ErrNoProcess = errors.New("Command requires a current process.")
	ErrNoTrace   = errors.New("Process is not being traced")
)

// Debugger tracks the target/process/trace stages of an interactive session.
// Command dispatch is single-threaded, so no locking here.
type Debugger struct {
	logger trace.Logger

	targetPath string
	hasTarget  bool
	launched   bool
	session    *Session

	selected int // 1-based thread index, 0 = first thread
}

// NewDebugger creates a debugger with no target.
func NewDebugger(logger trace.Logger) *Debugger {
	if logger == nil {
		logger = trace.NewNoOpLogger()
	}
	return &Debugger{logger: logger}
}

// CreateTarget records a target executable or session file. It resets any
// process and trace state.
func (d *Debugger) CreateTarget(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	d.targetPath = path
	d.hasTarget = true
	d.launched = false
	d.session = nil
	d.selected = 0
	d.logger.Logf(trace.SeverityInfo, "target created: %s", path)
	return nil
}

// Launch marks the target's process as running.
func (d *Debugger) Launch() error {
	if !d.hasTarget {
		return ErrNoTarget
	}
	d.launched = true
	return nil
}

// LoadTrace loads a session file and attaches it, establishing target and
// process state as a side effect the way a post-mortem trace load does.
func (d *Debugger) LoadTrace(path string) (*Session, error) {
	s, err := Load(path, d.logger)
	if err != nil {
		return nil, err
	}
	d.targetPath = path
	d.hasTarget = true
	d.launched = true
	d.session = s
	d.selected = 0
	return s, nil
}

// Trace returns the active session after walking the precondition ladder:
// target, then process, then trace. Each failure carries its fixed text.
func (d *Debugger) Trace() (*Session, error) {
	if !d.hasTarget {
		return nil, ErrNoTarget
	}
	if !d.launched {
		return nil, ErrNoProcess
	}
	if d.session == nil {
		return nil, ErrNoTrace
	}
	return d.session, nil
}

// SelectThread sets the current thread by 1-based index.
func (d *Debugger) SelectThread(index int) error {
	s, err := d.Trace()
	if err != nil {
		return err
	}
	if _, ok := s.Thread(index); !ok {
		return fmt.Errorf("no thread with index: %q", fmt.Sprintf("%d", index))
	}
	d.selected = index
	return nil
}

// ResolveThread returns the thread for a dump: the given 1-based index, or
// the currently selected (default first) thread when index is 0.
func (d *Debugger) ResolveThread(index int) (*Thread, error) {
	s, err := d.Trace()
	if err != nil {
		return nil, err
	}
	if index == 0 {
		index = d.selected
	}
	if index == 0 {
		index = 1
	}
	th, ok := s.Thread(index)
	if !ok {
		return nil, fmt.Errorf("no thread with index: %q", fmt.Sprintf("%d", index))
	}
	return th, nil
}
