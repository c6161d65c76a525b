package render

import (
	"encoding/json"
	"fmt"
	"io"

	"tracenav/navigator"
	"tracenav/trace"
)

// Field order in these structs is the wire order; encoding/json preserves it.
type rawInstructionJSON struct {
	ID          uint64 `json:"id"`
	LoadAddress string `json:"loadAddress"`
}

type instructionJSON struct {
	ID          uint64  `json:"id"`
	LoadAddress string  `json:"loadAddress"`
	Module      string  `json:"module"`
	Symbol      *string `json:"symbol"`
	Mnemonic    string  `json:"mnemonic"`
	Source      *string `json:"source,omitempty"`
	Line        *int    `json:"line,omitempty"`
	Column      *int    `json:"column,omitempty"`
}

type errorJSON struct {
	ID    uint64 `json:"id"`
	Error string `json:"error"`
}

// JSON renders a walk as one array of objects, compact or pretty (2-space
// indent). Gap sentinels are omitted; both forms parse to the same
// structure.
func JSON(w io.Writer, walk *navigator.Walk, raw, pretty bool) error {
	objects := []any{}
	for {
		ann, ok := walk.Next()
		if !ok {
			break
		}
		obj, keep := jsonElement(ann, raw)
		if keep {
			objects = append(objects, obj)
		}
	}

	var payload []byte
	var err error
	if pretty {
		payload, err = json.MarshalIndent(objects, "", "  ")
	} else {
		payload, err = json.Marshal(objects)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

func jsonElement(ann navigator.Annotated, raw bool) (any, bool) {
	it := ann.Item
	switch it.Kind {
	case trace.KindGap:
		return nil, false

	case trace.KindError:
		msg := it.Message
		if it.HasAddress {
			msg = fmt.Sprintf("0x%016x    error: %s", it.Address, it.Message)
		}
		return errorJSON{ID: it.ID, Error: msg}, true

	case trace.KindInstruction:
		addr := fmt.Sprintf("0x%x", it.Address)
		if raw {
			return rawInstructionJSON{ID: it.ID, LoadAddress: addr}, true
		}
		obj := instructionJSON{
			ID:          it.ID,
			LoadAddress: addr,
			Module:      ann.Context.Module,
			Mnemonic:    ann.Disasm.Mnemonic,
		}
		if ann.Context.Symbol != "" {
			sym := ann.Context.SymbolDisplay()
			obj.Symbol = &sym
		}
		if ann.Context.File != "" && ann.Context.Line > 0 {
			src := ann.Context.File
			line := ann.Context.Line
			col := ann.Context.Column
			obj.Source = &src
			obj.Line = &line
			obj.Column = &col
		}
		return obj, true

	default:
		return nil, false
	}
}
