package cursor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tracenav/trace"
)

// fixedSource builds a source of n instructions at 0x1000, 0x1004, ...
func fixedSource(n int) trace.ItemSource {
	items := make([]trace.Item, n)
	for i := range items {
		items[i] = trace.Instruction(0, 0x1000+uint64(i)*4)
	}
	return trace.NewSliceSource(items)
}

// lazySource hides its length, forcing callers to pull to the end.
type lazySource struct{ trace.ItemSource }

func (s lazySource) Len() (uint64, bool) { return 0, false }

func collect(t *testing.T, w *Window) []uint64 {
	t.Helper()
	var ids []uint64
	for {
		it, ok := w.Next()
		if !ok {
			return ids
		}
		ids = append(ids, it.ID)
	}
}

func TestBounds(t *testing.T) {
	if _, _, err := Bounds(-1, 5); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("Bounds(-1, 5) err = %v, want ErrInvalidBounds", err)
	}
	if _, _, err := Bounds(0, -1); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("Bounds(0, -1) err = %v, want ErrInvalidBounds", err)
	}
	s, c, err := Bounds(6, 20)
	if err != nil || s != 6 || c != 20 {
		t.Errorf("Bounds(6, 20) = %d, %d, %v", s, c, err)
	}
}

func TestResolveWindows(t *testing.T) {
	tests := []struct {
		name      string
		state     State
		sourceLen int
		wantIDs   []uint64
		exhausted bool
	}{
		{
			name:      "forwards from zero",
			state:     State{Forwards: true, Count: 5},
			sourceLen: 21,
			wantIDs:   []uint64{0, 1, 2, 3, 4},
		},
		{
			name:      "forwards with skip",
			state:     State{Forwards: true, Skip: 6, Count: 5},
			sourceLen: 21,
			wantIDs:   []uint64{6, 7, 8, 9, 10},
		},
		{
			name:      "backwards from latest with skip",
			state:     State{Latest: true, Skip: 6, Count: 5},
			sourceLen: 21,
			wantIDs:   []uint64{14, 13, 12, 11, 10},
		},
		{
			name:      "backwards from explicit anchor",
			state:     State{Anchor: 10, Skip: 6, Count: 5},
			sourceLen: 21,
			wantIDs:   []uint64{4, 3, 2, 1, 0},
		},
		{
			name:      "backwards clips at id zero",
			state:     State{Anchor: 2, Count: 5},
			sourceLen: 21,
			wantIDs:   []uint64{2, 1, 0},
			exhausted: true,
		},
		{
			name:      "forwards clips at the end",
			state:     State{Forwards: true, Anchor: 18, Count: 5},
			sourceLen: 21,
			wantIDs:   []uint64{18, 19, 20},
			exhausted: true,
		},
		{
			name:      "forwards skip past the end",
			state:     State{Forwards: true, Skip: 23, Count: 20},
			sourceLen: 21,
			wantIDs:   nil,
			exhausted: true,
		},
		{
			name:      "backwards skip past the start",
			state:     State{Latest: true, Skip: 23, Count: 20},
			sourceLen: 21,
			wantIDs:   nil,
			exhausted: true,
		},
		{
			name:      "all runs to the end",
			state:     State{Forwards: true, All: true},
			sourceLen: 4,
			wantIDs:   []uint64{0, 1, 2, 3},
			exhausted: true,
		},
		{
			name:      "zero count yields nothing",
			state:     State{Forwards: true},
			sourceLen: 4,
			wantIDs:   nil,
		},
		{
			name:      "empty trace",
			state:     State{Latest: true, Count: 20},
			sourceLen: 0,
			wantIDs:   nil,
			exhausted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win, err := tt.state.Resolve(fixedSource(tt.sourceLen))
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			got := collect(t, win)
			if diff := cmp.Diff(tt.wantIDs, got); diff != "" {
				t.Errorf("window ids mismatch (-want +got):\n%s", diff)
			}
			if win.Exhausted() != tt.exhausted {
				t.Errorf("Exhausted() = %v, want %v", win.Exhausted(), tt.exhausted)
			}
		})
	}
}

func TestResolveLatestWithUnknownLength(t *testing.T) {
	st := State{Latest: true, Count: 3}
	win, err := st.Resolve(lazySource{fixedSource(7)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := collect(t, win)
	want := []uint64{6, 5, 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("window ids mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvanceContinuesForwards(t *testing.T) {
	src := fixedSource(21)
	st := State{Forwards: true, Skip: 6, Count: 5}

	win, err := st.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := collect(t, win); got[len(got)-1] != 10 {
		t.Fatalf("first window ended at %d, want 10", got[len(got)-1])
	}

	st = st.Advance(win)
	win, err = st.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := collect(t, win)
	want := []uint64{11, 12, 13, 14, 15}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("repeat window mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvanceContinuesBackwards(t *testing.T) {
	src := fixedSource(21)
	st := State{Latest: true, Skip: 2, Count: 2}

	win, err := st.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff([]uint64{18, 17}, collect(t, win)); diff != "" {
		t.Fatalf("first window mismatch (-want +got):\n%s", diff)
	}

	st = st.Advance(win)
	win, err = st.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff([]uint64{16, 15}, collect(t, win)); diff != "" {
		t.Errorf("second window mismatch (-want +got):\n%s", diff)
	}

	st = st.Advance(win)
	win, err = st.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff([]uint64{14, 13}, collect(t, win)); diff != "" {
		t.Errorf("third window mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvanceAfterEmptyWindowStaysExhausted(t *testing.T) {
	src := fixedSource(21)
	st := State{Forwards: true, Skip: 100, Count: 20}

	win, err := st.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := collect(t, win); got != nil {
		t.Fatalf("expected empty window, got %v", got)
	}
	if !win.Exhausted() {
		t.Fatalf("expected exhausted window")
	}

	st = st.Advance(win)
	win, err = st.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := collect(t, win); got != nil {
		t.Errorf("repeat after exhaustion produced %v", got)
	}
	if !win.Exhausted() {
		t.Errorf("repeat after exhaustion should stay exhausted")
	}
}

func TestBackwardsDepletionThenRepeat(t *testing.T) {
	src := fixedSource(3)
	st := State{Latest: true, Count: 5}

	win, err := st.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff([]uint64{2, 1, 0}, collect(t, win)); diff != "" {
		t.Fatalf("window mismatch (-want +got):\n%s", diff)
	}

	st = st.Advance(win)
	win, err = st.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := collect(t, win); got != nil {
		t.Errorf("repeat past the start produced %v", got)
	}
	if !win.Exhausted() {
		t.Errorf("repeat past the start should be exhausted")
	}
}

func TestContinueSwitchesDirection(t *testing.T) {
	src := fixedSource(21)
	st := State{Forwards: true, Count: 5}

	win, err := st.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	collect(t, win) // renders 0..4
	st = st.Advance(win)

	// Same direction: picks up at 5.
	same := st.Continue(true)
	win, err = same.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff([]uint64{5, 6, 7, 8, 9}, collect(t, win)); diff != "" {
		t.Errorf("same-direction continue mismatch (-want +got):\n%s", diff)
	}

	// Flipped: recomputes from the last rendered id (4), not a default.
	flipped := st.Continue(false)
	win, err = flipped.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff([]uint64{3, 2, 1, 0}, collect(t, win)); diff != "" {
		t.Errorf("flipped continue mismatch (-want +got):\n%s", diff)
	}
}
