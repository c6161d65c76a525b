// Package session loads decoded trace sessions from snapshot files and owns
// the debugger-side state the dump command checks before touching a trace.
//
// A session file is JSON: cpu info, processes with their modules and symbol
// tables, and per-thread decoded item streams, either inline or in an
// external msgpack file next to the session file.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"tracenav/trace"
)

// hexUint64 accepts JSON numbers and "0x"-prefixed or decimal strings.
type hexUint64 uint64

func (h *hexUint64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := ParseAddress(s)
		if err != nil {
			return err
		}
		*h = hexUint64(v)
		return nil
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid address %s", string(data))
	}
	*h = hexUint64(n)
	return nil
}

// ParseAddress parses a decimal or 0x-prefixed hex value. The dump command
// uses the same syntax for --id.
func ParseAddress(s string) (uint64, error) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		return strconv.ParseUint(rest, 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

type sessionFile struct {
	Trace     traceInfo     `json:"trace"`
	Processes []processFile `json:"processes"`
}

type traceInfo struct {
	Type string  `json:"type"`
	CPU  cpuInfo `json:"cpu"`
}

type cpuInfo struct {
	Vendor   string `json:"vendor"`
	Family   int    `json:"family"`
	Model    int    `json:"model"`
	Stepping int    `json:"stepping"`
}

type processFile struct {
	PID     uint64       `json:"pid"`
	Threads []threadFile `json:"threads"`
	Modules []moduleFile `json:"modules"`
}

type threadFile struct {
	TID       uint64       `json:"tid"`
	Items     []ItemRecord `json:"items,omitempty"`
	ItemsFile string       `json:"itemsFile,omitempty"`
}

type moduleFile struct {
	Name        string       `json:"name"`
	LoadAddress hexUint64    `json:"loadAddress"`
	Size        uint64       `json:"size"`
	Symbols     []symbolFile `json:"symbols,omitempty"`
	Lines       []lineFile   `json:"lines,omitempty"`
	Inlines     []inlineFile `json:"inlines,omitempty"`
}

type symbolFile struct {
	Name    string    `json:"name"`
	Address hexUint64 `json:"address"`
	Size    uint64    `json:"size"`
	Stub    bool      `json:"stub,omitempty"`
}

type lineFile struct {
	Address hexUint64 `json:"address"`
	Size    uint64    `json:"size"`
	File    string    `json:"file"`
	Line    int       `json:"line"`
	Column  int       `json:"column,omitempty"`
}

type inlineFile struct {
	Function string    `json:"function"`
	Address  hexUint64 `json:"address"`
	Size     uint64    `json:"size"`
}

// Session is a loaded, read-only trace session.
type Session struct {
	Type      string
	CPU       cpuInfo
	Processes []*Process

	threads []*Thread
}

// Process groups the threads sharing one module map.
type Process struct {
	PID      uint64
	Threads  []*Thread
	Resolver trace.Resolver
}

// Thread is one traced thread and its decoded item stream.
type Thread struct {
	TID     uint64
	Index   int // 1-based, global across processes
	Process *Process
	Source  trace.ItemSource
	Disasm  trace.Disassembler
}

// supportedCPU reports whether the trace-producing hardware is one this
// navigator can interpret. An unsupported cpu degrades every thread to a
// data gap followed by an "unknown cpu" error item.
func supportedCPU(cpu cpuInfo) bool {
	switch cpu.Vendor {
	case "intel", "GenuineIntel":
		return true
	}
	return false
}

// Load reads a session file and builds its processes, threads, symbol
// resolvers and item sources. External item files are resolved relative to
// the session file.
func Load(path string, logger trace.Logger) (*Session, error) {
	if logger == nil {
		logger = trace.NewNoOpLogger()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if len(file.Processes) == 0 {
		return nil, fmt.Errorf("session %s has no processes", path)
	}

	s := &Session{Type: file.Trace.Type, CPU: file.Trace.CPU}
	if s.Type == "" {
		s.Type = "intel-pt"
	}
	cpuOK := supportedCPU(file.Trace.CPU)
	if !cpuOK {
		logger.Logf(trace.SeverityWarning, "unsupported cpu vendor %q, trace will not decode", file.Trace.CPU.Vendor)
	}

	baseDir := filepath.Dir(path)
	index := 0
	for _, pf := range file.Processes {
		proc := &Process{PID: pf.PID, Resolver: buildSymtab(pf.Modules)}
		for _, tf := range pf.Threads {
			index++
			th := &Thread{TID: tf.TID, Index: index, Process: proc}
			if err := loadThreadItems(th, tf, baseDir, cpuOK); err != nil {
				return nil, fmt.Errorf("thread %d: %w", tf.TID, err)
			}
			proc.Threads = append(proc.Threads, th)
			s.threads = append(s.threads, th)
		}
		s.Processes = append(s.Processes, proc)
	}
	if len(s.threads) == 0 {
		return nil, fmt.Errorf("session %s has no threads", path)
	}

	logger.Logf(trace.SeverityInfo, "loaded %s session: %d process(es), %d thread(s)",
		s.Type, len(s.Processes), len(s.threads))
	return s, nil
}

// Threads returns all threads across processes in index order.
func (s *Session) Threads() []*Thread { return s.threads }

// Thread returns the thread with the given 1-based index.
func (s *Session) Thread(index int) (*Thread, bool) {
	if index < 1 || index > len(s.threads) {
		return nil, false
	}
	return s.threads[index-1], true
}

func loadThreadItems(th *Thread, tf threadFile, baseDir string, cpuOK bool) error {
	if !cpuOK {
		// The decoder cannot interpret the stream at all: the whole
		// thread is one lost run ending in a single error item.
		th.Source = trace.NewSliceSource([]trace.Item{
			trace.Gap(),
			trace.ErrorItem(0, "unknown cpu"),
		})
		th.Disasm = disasmTable{}
		return nil
	}

	records := tf.Items
	if tf.ItemsFile != "" {
		loaded, err := ReadItemsFile(filepath.Join(baseDir, tf.ItemsFile))
		if err != nil {
			return err
		}
		records = loaded
	}

	items, disasm, err := buildItems(records)
	if err != nil {
		return err
	}
	th.Source = trace.NewSliceSource(items)
	th.Disasm = disasm
	return nil
}

// disasmTable maps load addresses to pre-rendered disassembly.
type disasmTable map[uint64]trace.Disassembly

func (t disasmTable) Disassemble(addr uint64) (trace.Disassembly, bool) {
	d, ok := t[addr]
	return d, ok
}

func buildItems(records []ItemRecord) ([]trace.Item, disasmTable, error) {
	items := make([]trace.Item, 0, len(records))
	disasm := disasmTable{}
	var id uint64
	for i, rec := range records {
		switch {
		case rec.Gap:
			items = append(items, trace.Gap())

		case rec.Error != "":
			if rec.Address != "" {
				addr, err := ParseAddress(rec.Address)
				if err != nil {
					return nil, nil, fmt.Errorf("item %d: %w", i, err)
				}
				items = append(items, trace.ErrorItemAt(id, addr, rec.Error))
			} else {
				items = append(items, trace.ErrorItem(id, rec.Error))
			}
			id++

		default:
			if rec.Address == "" {
				return nil, nil, fmt.Errorf("item %d: missing address", i)
			}
			addr, err := ParseAddress(rec.Address)
			if err != nil {
				return nil, nil, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, trace.Instruction(id, addr))
			if rec.Mnemonic != "" {
				disasm[addr] = trace.Disassembly{
					Mnemonic: rec.Mnemonic,
					Operands: rec.Operands,
					Comment:  rec.Comment,
				}
			}
			id++
		}
	}
	return items, disasm, nil
}

// symtab resolves addresses against the per-process module list.
type symtab struct {
	modules []symtabModule
}

type symtabModule struct {
	name    string
	start   uint64
	end     uint64
	symbols []symbolFile
	lines   []lineFile
	inlines []inlineFile
}

func buildSymtab(modules []moduleFile) trace.Resolver {
	st := &symtab{}
	for _, mf := range modules {
		m := symtabModule{
			name:    mf.Name,
			start:   uint64(mf.LoadAddress),
			end:     uint64(mf.LoadAddress) + mf.Size,
			symbols: append([]symbolFile(nil), mf.Symbols...),
			lines:   append([]lineFile(nil), mf.Lines...),
			inlines: append([]inlineFile(nil), mf.Inlines...),
		}
		sort.Slice(m.symbols, func(i, j int) bool { return m.symbols[i].Address < m.symbols[j].Address })
		sort.Slice(m.lines, func(i, j int) bool { return m.lines[i].Address < m.lines[j].Address })
		// Outer inline ranges before inner ones at the same address.
		sort.Slice(m.inlines, func(i, j int) bool {
			if m.inlines[i].Address != m.inlines[j].Address {
				return m.inlines[i].Address < m.inlines[j].Address
			}
			return m.inlines[i].Size > m.inlines[j].Size
		})
		st.modules = append(st.modules, m)
	}
	return st
}

func (st *symtab) Resolve(addr uint64) trace.SymbolContext {
	for _, m := range st.modules {
		if addr < m.start || addr >= m.end {
			continue
		}
		ctx := trace.SymbolContext{Module: m.name, Mapped: true}
		for _, sym := range m.symbols {
			if addr >= uint64(sym.Address) && addr < uint64(sym.Address)+sym.Size {
				ctx.Symbol = sym.Name
				ctx.Stub = sym.Stub
				ctx.SymbolOffset = addr - uint64(sym.Address)
				break
			}
		}
		for _, ln := range m.lines {
			if addr >= uint64(ln.Address) && addr < uint64(ln.Address)+ln.Size {
				ctx.File = ln.File
				ctx.Line = ln.Line
				ctx.Column = ln.Column
				break
			}
		}
		for _, in := range m.inlines {
			if addr >= uint64(in.Address) && addr < uint64(in.Address)+in.Size {
				ctx.Inline = append(ctx.Inline, trace.InlineFrame{
					Function: in.Function,
					Offset:   addr - uint64(in.Address),
				})
			}
		}
		return ctx
	}
	return trace.SymbolContext{}
}
