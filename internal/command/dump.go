// Package command parses and executes the dump command and dispatches the
// interactive shell's command lines.
package command

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"fortio.org/safecast"
	"github.com/spf13/pflag"

	"tracenav/cursor"
	"tracenav/internal/config"
	"tracenav/internal/session"
	"tracenav/navigator"
	"tracenav/render"
)

// Format selects the dump output renderer.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatPrettyJSON
)

// Request is a parsed dump invocation.
type Request struct {
	ThreadIndex int // 1-based; 0 = currently selected thread
	Raw         bool
	All         bool
	Forwards    bool
	Count       int
	CountSet    bool
	Skip        int
	ID          uint64
	HasID       bool
	Format      Format
	FormatSet   bool
	FilePath    string
}

// ParseDump parses dump arguments: an optional 1-based thread index plus the
// flag set of §external-interface. Count and skip accept negative values
// here so bounds validation can reject them with a proper message before any
// trace access.
func ParseDump(args []string) (Request, error) {
	fs := pflag.NewFlagSet("dump", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	raw := fs.Bool("raw", false, "dump only ids and addresses")
	all := fs.Bool("all", false, "dump the whole trace")
	forwards := fs.BoolP("forwards", "f", false, "dump oldest to newest")
	count := fs.IntP("count", "c", config.DefaultCount, "number of items to dump")
	skip := fs.IntP("skip", "s", 0, "items to skip from the anchor")
	id := fs.StringP("id", "i", "", "anchor item id, decimal or 0x hex")
	jsonOut := fs.BoolP("json", "j", false, "compact JSON output")
	prettyJSON := fs.BoolP("pretty-json", "J", false, "pretty JSON output")
	file := fs.StringP("file", "F", "", "write output to a file instead of the console")

	if err := fs.Parse(args); err != nil {
		return Request{}, err
	}

	req := Request{
		Raw:      *raw,
		All:      *all,
		Forwards: *forwards,
		Count:    *count,
		CountSet: fs.Changed("count"),
		Skip:     *skip,
		FilePath: *file,
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		idx, err := strconv.Atoi(rest[0])
		if err != nil || idx < 1 {
			return Request{}, fmt.Errorf("no thread with index: %q", rest[0])
		}
		req.ThreadIndex = idx
	default:
		return Request{}, fmt.Errorf("too many arguments: %v", rest)
	}

	if *id != "" {
		v, err := session.ParseAddress(*id)
		if err != nil {
			return Request{}, fmt.Errorf("invalid id %q", *id)
		}
		req.ID = v
		req.HasID = true
	}

	if *jsonOut && *prettyJSON {
		return Request{}, errors.New("--json and --pretty-json are mutually exclusive")
	}
	if *jsonOut {
		req.Format = FormatJSON
		req.FormatSet = true
	}
	if *prettyJSON {
		req.Format = FormatPrettyJSON
		req.FormatSet = true
	}
	return req, nil
}

// configFormat maps the config file's format name to a renderer format.
// Validation rejects unknown names at load time; anything else is text.
func configFormat(name string) Format {
	switch name {
	case "json":
		return FormatJSON
	case "pretty-json":
		return FormatPrettyJSON
	default:
		return FormatText
	}
}

// threadState is the saved per-thread paging state: the advanced cursor plus
// the render parameters a bare repeat reuses.
type threadState struct {
	st     cursor.State
	raw    bool
	format Format
}

// Executor runs dump requests against a debugger, keeping the session-scoped
// per-thread repeat state. It is not safe for concurrent use; command
// dispatch is single-threaded.
type Executor struct {
	Debugger *session.Debugger
	Config   config.Config
	Out      io.Writer

	states     map[uint64]*threadState
	lastThread uint64
	hasLast    bool
}

// NewExecutor creates an executor writing console output to out.
func NewExecutor(dbg *session.Debugger, cfg config.Config, out io.Writer) *Executor {
	return &Executor{
		Debugger: dbg,
		Config:   cfg,
		Out:      out,
		states:   make(map[uint64]*threadState),
	}
}

// Dump executes a parsed request. The per-thread state is updated only on
// success; any failure leaves the previous paging position intact.
func (e *Executor) Dump(req Request) error {
	th, err := e.Debugger.ResolveThread(req.ThreadIndex)
	if err != nil {
		return err
	}

	count := req.Count
	if !req.CountSet {
		count = e.Config.Dump.Count
	}
	format := req.Format
	if !req.FormatSet {
		format = configFormat(e.Config.Dump.Format)
	}
	skip64, count64, err := cursor.Bounds(req.Skip, count)
	if err != nil {
		return err
	}

	st := cursor.State{
		Skip:     skip64,
		Count:    count64,
		All:      req.All,
		Forwards: req.Forwards,
	}
	if req.HasID {
		anchor, err := safecast.Conv[int64](req.ID)
		if err != nil {
			return fmt.Errorf("invalid id %d", req.ID)
		}
		st.Anchor = anchor
	} else if !req.Forwards {
		st.Latest = true
	}

	return e.run(th, st, req.Raw, format, req.FilePath)
}

// Repeat re-runs the last dump for the last dumped thread, continuing from
// where it stopped with the saved count, raw flag and format. With no prior
// dump it behaves like a default dump on the current thread.
func (e *Executor) Repeat() error {
	if !e.hasLast {
		return e.Dump(Request{})
	}
	s, err := e.Debugger.Trace()
	if err != nil {
		return err
	}
	var th *session.Thread
	for _, cand := range s.Threads() {
		if cand.TID == e.lastThread {
			th = cand
			break
		}
	}
	if th == nil {
		return e.Dump(Request{})
	}
	saved, ok := e.states[th.TID]
	if !ok {
		return e.Dump(Request{ThreadIndex: th.Index})
	}
	return e.run(th, saved.st, saved.raw, saved.format, "")
}

func (e *Executor) run(th *session.Thread, st cursor.State, raw bool, format Format, filePath string) error {
	win, err := st.Resolve(th.Source)
	if err != nil {
		return err
	}
	walk := navigator.NewWalk(win, th.Source, th.Process.Resolver, th.Disasm)

	renderFn := func(w io.Writer) error {
		switch format {
		case FormatJSON:
			return render.JSON(w, walk, raw, false)
		case FormatPrettyJSON:
			return render.JSON(w, walk, raw, true)
		default:
			return render.Text(w, walk, raw)
		}
	}

	if filePath != "" {
		// The file receives exactly the renderer payload. The thread
		// header line is console chrome and is never written to it.
		if err := render.ToFile(filePath, renderFn); err != nil {
			return err
		}
	} else {
		if format == FormatText {
			fmt.Fprintf(e.Out, "thread #%d: tid = %d\n", th.Index, th.TID)
		}
		if err := renderFn(e.Out); err != nil {
			return err
		}
	}

	e.states[th.TID] = &threadState{st: st.Advance(win), raw: raw, format: format}
	e.lastThread = th.TID
	e.hasLast = true
	return nil
}

// LastState returns the saved cursor state for a thread, if any.
func (e *Executor) LastState(tid uint64) (cursor.State, bool) {
	saved, ok := e.states[tid]
	if !ok {
		return cursor.State{}, false
	}
	return saved.st, true
}
