// Package cursor resolves dump queries (anchor, skip, count, direction) into
// concrete id windows over a thread's item source, and carries the per-thread
// paging state that lets a bare repeat continue where the last dump left off.
package cursor

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"tracenav/trace"
)

// ErrInvalidBounds is returned before any item fetch when skip or count is
// negative.
var ErrInvalidBounds = errors.New("invalid bounds")

// Bounds validates and converts command-level skip/count values. Negative
// values fail with ErrInvalidBounds; no item fetch happens on that path.
func Bounds(skip, count int) (uint64, uint64, error) {
	s, err := safecast.Conv[uint64](skip)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: skip %d", ErrInvalidBounds, skip)
	}
	c, err := safecast.Conv[uint64](count)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: count %d", ErrInvalidBounds, count)
	}
	return s, c, nil
}

// State is the persisted cursor of one thread. Anchor is the reference id
// the next window is computed from; Latest stands for "last known id" and is
// resolved against the source at query time. An Anchor past either end of
// the trace is valid and yields an empty, exhausted window.
type State struct {
	Anchor   int64
	Latest   bool
	Skip     uint64
	Count    uint64
	All      bool
	Forwards bool

	lastID  int64
	hasLast bool
}

// Resolve computes the concrete window for the state against a source.
// Forwards windows start at max(0, anchor)+skip and advance by +1; backwards
// windows start at anchor-skip and advance by -1 down to id 0. Running past
// either end terminates the window and marks it exhausted.
func (st State) Resolve(src trace.ItemSource) (*Window, error) {
	anchor := st.Anchor
	if st.Latest {
		n, known := src.Len()
		if !known {
			n = scanLen(src)
		}
		if n == 0 {
			return &Window{src: src, done: true, exhausted: true, forwards: st.Forwards}, nil
		}
		last, err := safecast.Conv[int64](n - 1)
		if err != nil {
			return nil, fmt.Errorf("trace too large: %w", err)
		}
		anchor = last
	}

	w := &Window{
		src:       src,
		forwards:  st.Forwards,
		remaining: st.Count,
		unbounded: st.All,
	}

	if st.Forwards {
		if anchor < 0 {
			anchor = 0
		}
		w.start = anchor + int64(st.Skip)
	} else {
		w.start = anchor - int64(st.Skip)
		if w.start < 0 {
			w.done = true
			w.exhausted = true
			return w, nil
		}
	}
	w.next = w.start

	if !st.All && st.Count == 0 {
		w.done = true
	}
	return w, nil
}

// Advance returns the continuation state after a rendered window: skip is
// cleared and the anchor moves one past the last id actually produced, in
// the traversal direction, so the next repeat neither re-renders nor skips
// items. An empty window leaves the anchor at the (out of range) start so a
// repeat stays exhausted.
func (st State) Advance(w *Window) State {
	next := st
	next.Skip = 0
	next.Latest = false
	if w.hasLast {
		next.lastID = w.last
		next.hasLast = true
		if st.Forwards {
			next.Anchor = w.last + 1
		} else {
			next.Anchor = w.last - 1
		}
	} else {
		next.Anchor = w.start
	}
	return next
}

// Continue returns the state for a repeat in the given direction. Continuing
// in the same direction reuses the advanced anchor; switching direction
// recomputes the anchor from the last rendered id instead of resetting to a
// default.
func (st State) Continue(forwards bool) State {
	next := st
	next.Skip = 0
	if forwards == st.Forwards {
		return next
	}
	next.Forwards = forwards
	if st.hasLast {
		next.Latest = false
		if forwards {
			next.Anchor = st.lastID + 1
		} else {
			next.Anchor = st.lastID - 1
		}
	}
	return next
}

// LastRendered returns the id of the last item produced by a window this
// state advanced over.
func (st State) LastRendered() (int64, bool) {
	return st.lastID, st.hasLast
}

// Window is a resolved id window being traversed. It pulls items lazily, so
// an unbounded (--all) window against a length-unknown source never
// pre-materializes the sequence.
type Window struct {
	src       trace.ItemSource
	start     int64
	next      int64
	last      int64
	hasLast   bool
	remaining uint64
	unbounded bool
	forwards  bool
	done      bool
	exhausted bool
}

// Next returns the next item of the window in traversal order. ok=false ends
// the traversal; Exhausted distinguishes "count satisfied" from "ran past
// the trace boundary".
func (w *Window) Next() (trace.Item, bool) {
	if w.done {
		return trace.Item{}, false
	}
	if !w.unbounded && w.remaining == 0 {
		w.done = true
		return trace.Item{}, false
	}
	if w.next < 0 {
		w.done = true
		w.exhausted = true
		return trace.Item{}, false
	}
	it, ok := w.src.Item(uint64(w.next))
	if !ok {
		w.done = true
		w.exhausted = true
		return trace.Item{}, false
	}
	w.last = w.next
	w.hasLast = true
	if w.forwards {
		w.next++
	} else {
		w.next--
	}
	if !w.unbounded {
		w.remaining--
	}
	return it, true
}

// Exhausted reports whether the traversal ran past the trace's start or end
// before its count was satisfied.
func (w *Window) Exhausted() bool { return w.exhausted }

// Produced reports whether the window yielded at least one item, and the id
// of the last one.
func (w *Window) Produced() (uint64, bool) {
	if !w.hasLast {
		return 0, false
	}
	return uint64(w.last), true
}

// Forwards reports the traversal direction.
func (w *Window) Forwards() bool { return w.forwards }

func scanLen(src trace.ItemSource) uint64 {
	var n uint64
	for {
		if _, ok := src.Item(n); !ok {
			return n
		}
		n++
	}
}
