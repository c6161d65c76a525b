// Package navigator walks a resolved cursor window and annotates each trace
// item with its symbol context, emitting header boundaries exactly where the
// resolved context changes.
package navigator

import (
	"tracenav/cursor"
	"tracenav/trace"
)

// UnmappedError is the message of error items synthesized for instructions
// whose address no loaded module covers.
const UnmappedError = "no memory mapped at this address"

// Annotated is one renderable element of a walk: a trace item plus its
// resolved symbol context. Header marks the first item of a maximal run of
// adjacent items sharing one context; renderers print the context line
// there. Gap sentinels come through as items of KindGap with no context.
type Annotated struct {
	Item       trace.Item
	Disasm     trace.Disassembly
	HasDisasm  bool
	Context    trace.SymbolContext
	HasContext bool
	Header     bool
}

// Walk annotates the items of a window in traversal order. Gaps attached
// between two ids are emitted between them in either traversal direction.
type Walk struct {
	win   *cursor.Window
	src   trace.ItemSource
	res   trace.Resolver
	dis   trace.Disassembler
	prev  trace.SymbolContext
	track bool
	queue []Annotated
}

// NewWalk builds a walk over win. resolver and disasm may be nil, in which
// case no instruction resolves to a context or disassembly; unmapped
// conversion then applies to every instruction.
func NewWalk(win *cursor.Window, src trace.ItemSource, resolver trace.Resolver, disasm trace.Disassembler) *Walk {
	return &Walk{win: win, src: src, res: resolver, dis: disasm}
}

// Next returns the next annotated element. ok=false ends the walk; check
// Exhausted afterwards for the trace-boundary case.
func (w *Walk) Next() (Annotated, bool) {
	if len(w.queue) > 0 {
		out := w.queue[0]
		w.queue = w.queue[1:]
		return out, true
	}

	it, ok := w.win.Next()
	if !ok {
		return Annotated{}, false
	}

	ann := w.annotate(it)

	// A gap attached before id k renders immediately before item k in
	// either traversal direction.
	if w.src.GapBefore(it.ID) {
		w.queue = append(w.queue, ann)
		return Annotated{Item: trace.Gap()}, true
	}
	return ann, true
}

// Exhausted reports whether the underlying window ran past the trace
// boundary before its count was satisfied.
func (w *Walk) Exhausted() bool { return w.win.Exhausted() }

func (w *Walk) annotate(it trace.Item) Annotated {
	if it.Kind != trace.KindInstruction {
		// Errors carry no context and break the current header run.
		w.track = false
		return Annotated{Item: it}
	}

	var ctx trace.SymbolContext
	if w.res != nil {
		ctx = w.res.Resolve(it.Address)
	}
	if !ctx.Mapped {
		w.track = false
		return Annotated{Item: trace.ErrorItemAt(it.ID, it.Address, UnmappedError)}
	}

	ann := Annotated{Item: it, Context: ctx, HasContext: true}
	if w.dis != nil {
		if d, ok := w.dis.Disassemble(it.Address); ok {
			ann.Disasm = d
			ann.HasDisasm = true
		}
	}
	ann.Header = !w.track || !trace.SameContext(w.prev, ctx)
	w.prev = ctx
	w.track = true
	return ann
}
