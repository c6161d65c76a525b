package trace

import (
	"fmt"
	"strings"
)

// InlineFrame is one inlined function frame active at an address. Offset is
// the distance from the start of the inlined range to the address.
type InlineFrame struct {
	Function string
	Offset   uint64
}

// SymbolContext is the resolved symbol context of an address. The zero value
// means the address is not mapped by any loaded module.
type SymbolContext struct {
	// Module is the module name, or "" when the address is unmapped.
	Module string
	Mapped bool

	// Symbol is the function or symbol name, "" when the address falls
	// inside a module but outside any known symbol.
	Symbol string

	// Stub marks trampoline/PLT-style symbols. Stubs render as
	// "symbol stub for: <name>" and compare distinct from a real function
	// of the same name.
	Stub bool

	// SymbolOffset is the distance from the symbol start to the address.
	SymbolOffset uint64

	// Inline is the inline chain, outermost first. Empty when the address
	// is not inside any inlined range.
	Inline []InlineFrame

	File   string
	Line   int
	Column int
}

// Resolver maps a load address to its symbol context.
type Resolver interface {
	// Resolve returns the context for addr. Mapped is false on the
	// returned context when no module covers addr.
	Resolve(addr uint64) SymbolContext
}

// SymbolDisplay returns the symbol portion of a header: the plain name, the
// stub form, or "(none)" when the module has no symbol for the address.
func (c SymbolContext) SymbolDisplay() string {
	if c.Symbol == "" {
		return "(none)"
	}
	if c.Stub {
		return "symbol stub for: " + c.Symbol
	}
	return c.Symbol
}

// Header renders the full context header line body:
//
//	<module>`<symbol> + <off> [inlined] <fn> + <off> at <file>:<line>:<col>
//
// Offsets are omitted when zero, the source location when no line entry
// resolved, and the column when zero.
func (c SymbolContext) Header() string {
	var sb strings.Builder
	sb.WriteString(c.Module)
	sb.WriteString("`")
	sb.WriteString(c.SymbolDisplay())
	if c.SymbolOffset > 0 {
		fmt.Fprintf(&sb, " + %d", c.SymbolOffset)
	}
	if len(c.Inline) > 0 {
		inner := c.Inline[len(c.Inline)-1]
		sb.WriteString(" [inlined] ")
		sb.WriteString(inner.Function)
		if inner.Offset > 0 {
			fmt.Fprintf(&sb, " + %d", inner.Offset)
		}
	}
	if c.File != "" && c.Line > 0 {
		fmt.Fprintf(&sb, " at %s:%d", c.File, c.Line)
		if c.Column > 0 {
			fmt.Fprintf(&sb, ":%d", c.Column)
		}
	}
	return sb.String()
}

// SameContext reports whether two contexts belong to the same header run.
// The comparison covers module, symbol identity (including stub-ness), the
// inline chain by function name, and the source line. Offsets are excluded:
// adjacent instructions of one line differ in offset but share a header.
func SameContext(a, b SymbolContext) bool {
	if a.Mapped != b.Mapped || a.Module != b.Module {
		return false
	}
	if a.Symbol != b.Symbol || a.Stub != b.Stub {
		return false
	}
	if len(a.Inline) != len(b.Inline) {
		return false
	}
	for i := range a.Inline {
		if a.Inline[i].Function != b.Inline[i].Function {
			return false
		}
	}
	return a.File == b.File && a.Line == b.Line
}
