package trace

import "fmt"

// ItemKind represents the kind of a decoded trace item
type ItemKind int

const (
	KindUnknown     ItemKind = iota
	KindInstruction          // Executed instruction with a load address
	KindError                // Decode or mapping error, traversal continues past it
	KindGap                  // Run of instructions lost from the trace
)

func (k ItemKind) String() string {
	switch k {
	case KindInstruction:
		return "INSTRUCTION"
	case KindError:
		return "ERROR"
	case KindGap:
		return "GAP"
	default:
		return "UNKNOWN"
	}
}

// Item is one element of a decoded execution trace. It is a tagged union:
// instructions carry an id and a load address, errors carry an id, a message
// and possibly an address, gaps carry neither id nor address and sit between
// two identified items.
type Item struct {
	Kind ItemKind

	// ID is the zero-based position of the item in execution order.
	// Not meaningful for KindGap.
	ID uint64

	// Address is the load address (for KindInstruction, and for KindError
	// when HasAddress is set).
	Address    uint64
	HasAddress bool

	// Message describes the failure for KindError.
	Message string
}

// Instruction builds an instruction item.
func Instruction(id, address uint64) Item {
	return Item{Kind: KindInstruction, ID: id, Address: address, HasAddress: true}
}

// ErrorItem builds an error item without an address.
func ErrorItem(id uint64, message string) Item {
	return Item{Kind: KindError, ID: id, Message: message}
}

// ErrorItemAt builds an error item that retains the faulting address.
func ErrorItemAt(id, address uint64, message string) Item {
	return Item{Kind: KindError, ID: id, Address: address, HasAddress: true, Message: message}
}

// Gap builds a gap sentinel item.
func Gap() Item {
	return Item{Kind: KindGap}
}

// Description returns a human-readable description of the item.
func (it Item) Description() string {
	switch it.Kind {
	case KindInstruction:
		return fmt.Sprintf("INSTRUCTION: id=%d addr=0x%x", it.ID, it.Address)
	case KindError:
		if it.HasAddress {
			return fmt.Sprintf("ERROR: id=%d addr=0x%x %s", it.ID, it.Address, it.Message)
		}
		return fmt.Sprintf("ERROR: id=%d %s", it.ID, it.Message)
	case KindGap:
		return "GAP"
	default:
		return "UNKNOWN_ITEM"
	}
}
