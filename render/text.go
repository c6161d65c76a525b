// Package render turns a walk of annotated trace items into text or JSON.
// Renderers hold no cross-call state; the console forms stream per line, the
// file sink buffers the full payload and writes it once.
package render

import (
	"fmt"
	"io"

	"tracenav/navigator"
	"tracenav/trace"
)

// Sentinel lines of the text renderers.
const (
	GapSentinel    = "...missing instructions"
	NoMoreData     = "no more data"
	itemIndent     = "    "
	headerIndent   = "  "
	mnemonicColumn = 7
	operandsColumn = 26
)

// Text renders a walk as text, streaming one line per element. In raw mode
// context headers and disassembly are suppressed and instructions render as
// id plus padded hex address only.
func Text(w io.Writer, walk *navigator.Walk, raw bool) error {
	for {
		ann, ok := walk.Next()
		if !ok {
			break
		}
		if err := textElement(w, ann, raw); err != nil {
			return err
		}
	}
	if walk.Exhausted() {
		if _, err := fmt.Fprintf(w, "%s%s\n", itemIndent, NoMoreData); err != nil {
			return err
		}
	}
	return nil
}

func textElement(w io.Writer, ann navigator.Annotated, raw bool) error {
	it := ann.Item
	switch it.Kind {
	case trace.KindGap:
		_, err := fmt.Fprintf(w, "%s%s\n", itemIndent, GapSentinel)
		return err

	case trace.KindError:
		if it.HasAddress {
			_, err := fmt.Fprintf(w, "%s%d: 0x%016x    error: %s\n", itemIndent, it.ID, it.Address, it.Message)
			return err
		}
		_, err := fmt.Fprintf(w, "%s%d: error: %s\n", itemIndent, it.ID, it.Message)
		return err

	case trace.KindInstruction:
		if !raw && ann.Header {
			if _, err := fmt.Fprintf(w, "%s%s\n", headerIndent, ann.Context.Header()); err != nil {
				return err
			}
		}
		if raw || !ann.HasDisasm {
			_, err := fmt.Fprintf(w, "%s%d: 0x%016x\n", itemIndent, it.ID, it.Address)
			return err
		}
		_, err := fmt.Fprintf(w, "%s%d: 0x%016x    %s\n", itemIndent, it.ID, it.Address, disasmText(ann.Disasm))
		return err

	default:
		return fmt.Errorf("unrenderable item kind %s", it.Kind)
	}
}

// disasmText lays out mnemonic, operands and comment in the fixed columns of
// the text dump. Trailing padding is dropped when a field is last.
func disasmText(d trace.Disassembly) string {
	if d.Operands == "" && d.Comment == "" {
		return d.Mnemonic
	}
	if d.Comment == "" {
		return fmt.Sprintf("%-*s%s", mnemonicColumn, d.Mnemonic, d.Operands)
	}
	return fmt.Sprintf("%-*s%-*s; %s", mnemonicColumn, d.Mnemonic, operandsColumn, d.Operands, d.Comment)
}
