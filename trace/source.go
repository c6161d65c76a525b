package trace

// ItemSource yields the decoded items of one thread by absolute id. Ids are
// unique, contiguous, zero-based and in execution order. Gaps carry no id of
// their own; a source reports them as attached before the id that follows
// the missing run.
type ItemSource interface {
	// Item returns the item with the given id, or ok=false past the end.
	// The returned item is never a gap.
	Item(id uint64) (Item, bool)

	// Len returns the total item count when the source knows it. Sources
	// backed by lazy decoding may report known=false; callers then pull
	// until Item reports the end.
	Len() (n uint64, known bool)

	// GapBefore reports whether a run of lost instructions precedes id.
	// GapBefore(0) is true when the trace starts mid-stream.
	GapBefore(id uint64) bool
}

// Disassembly is the pre-rendered disassembly of one instruction. Producing
// it from instruction bytes is outside this module; trace sessions carry the
// text alongside each item.
type Disassembly struct {
	Mnemonic string
	Operands string
	Comment  string
}

// Disassembler supplies disassembly text for instruction addresses.
type Disassembler interface {
	// Disassemble returns the disassembly at addr, or ok=false when the
	// session has none for it.
	Disassemble(addr uint64) (Disassembly, bool)
}

// SliceSource is an in-memory ItemSource over a fixed item slice, with gap
// positions attached before ids. It is the source behind loaded sessions and
// test fixtures.
type SliceSource struct {
	items []Item
	gaps  map[uint64]bool
}

// NewSliceSource builds a source from items in execution order. Gap items in
// the input are folded into gap markers attached before the next real item;
// the remaining items are re-numbered contiguously from 0.
func NewSliceSource(items []Item) *SliceSource {
	s := &SliceSource{gaps: make(map[uint64]bool)}
	for _, it := range items {
		if it.Kind == KindGap {
			s.gaps[uint64(len(s.items))] = true
			continue
		}
		it.ID = uint64(len(s.items))
		s.items = append(s.items, it)
	}
	return s
}

func (s *SliceSource) Item(id uint64) (Item, bool) {
	if id >= uint64(len(s.items)) {
		return Item{}, false
	}
	return s.items[id], true
}

func (s *SliceSource) Len() (uint64, bool) {
	return uint64(len(s.items)), true
}

func (s *SliceSource) GapBefore(id uint64) bool {
	return s.gaps[id]
}
