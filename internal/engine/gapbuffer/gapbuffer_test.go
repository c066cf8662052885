package gapbuffer

import (
	"errors"
	"math/rand"
	"slices"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	g := New[int](0)
	if g.Len() != 0 {
		t.Errorf("new buffer should be empty, got length %d", g.Len())
	}
	if g.Cap() != DefaultCapacity {
		t.Errorf("expected capacity %d, got %d", DefaultCapacity, g.Cap())
	}
}

func TestFrom(t *testing.T) {
	g := From(1, 2, 3)
	if diff := cmp.Diff([]int{1, 2, 3}, g.Slice()); diff != "" {
		t.Errorf("From mismatch (-want +got):\n%s", diff)
	}
	start, _ := g.Gap()
	if start != 3 {
		t.Errorf("gap should start after the items, got %d", start)
	}
}

func TestInsertEmpty(t *testing.T) {
	g := New[string](1)
	if err := g.Insert(0, "a"); err != nil {
		t.Fatalf("insert into empty buffer failed: %v", err)
	}
	if g.Len() != 1 || g.At(0) != "a" {
		t.Errorf("expected [a], got %v", g.Slice())
	}
}

func TestInsertPrependAppend(t *testing.T) {
	g := New[int](2)
	for i := 0; i < 5; i++ {
		g.Append(i)
	}
	for i := -1; i >= -3; i-- {
		if err := g.Insert(0, i); err != nil {
			t.Fatalf("prepend failed: %v", err)
		}
	}
	want := []int{-3, -2, -1, 0, 1, 2, 3, 4}
	if diff := cmp.Diff(want, g.Slice()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertRange(t *testing.T) {
	g := From(1, 5)
	if err := g.InsertRange(1, 2, 3, 4); err != nil {
		t.Fatalf("insert range failed: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, g.Slice()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if err := g.InsertRange(2); err != nil {
		t.Errorf("empty insert range should succeed, got %v", err)
	}
}

func TestGrowDoubles(t *testing.T) {
	g := New[int](4)
	for i := 0; i < 5; i++ {
		g.Append(i)
	}
	if g.Cap() < 8 {
		t.Errorf("expected capacity to at least double to 8, got %d", g.Cap())
	}
}

func TestGetSetOutOfRange(t *testing.T) {
	g := From(1, 2, 3)

	tests := []struct {
		name  string
		index int
	}{
		{"negative", -1},
		{"at length", 3},
		{"past length", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Get(tt.index); !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("Get(%d): expected ErrIndexOutOfRange, got %v", tt.index, err)
			}
			if err := g.Set(tt.index, 0); !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("Set(%d): expected ErrIndexOutOfRange, got %v", tt.index, err)
			}
			if err := g.RemoveAt(tt.index); !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("RemoveAt(%d): expected ErrIndexOutOfRange, got %v", tt.index, err)
			}
		})
	}

	if err := g.Insert(4, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Insert past length: expected ErrIndexOutOfRange, got %v", err)
	}
	if err := g.RemoveRange(0, -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("negative count: expected ErrIndexOutOfRange, got %v", err)
	}
	if err := g.RemoveRange(2, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("range past end: expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestAtPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At out of range should panic")
		}
	}()
	New[int](0).At(0)
}

func TestSetAcrossGap(t *testing.T) {
	g := From(0, 1, 2, 3, 4)
	_ = g.Insert(2, 9) // gap now sits after index 2
	_ = g.Set(0, 10)
	_ = g.Set(4, 40)
	want := []int{10, 1, 9, 2, 40, 4}
	if diff := cmp.Diff(want, g.Slice()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	*g.Ptr(5) = 50
	if v, _ := g.Get(5); v != 50 {
		t.Errorf("Ptr write not visible, got %d", v)
	}
}

func TestRemoveRange(t *testing.T) {
	g := From(0, 1, 2, 3, 4, 5, 6)
	if err := g.RemoveRange(2, 3); err != nil {
		t.Fatalf("remove range failed: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1, 5, 6}, g.Slice()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if err := g.RemoveRange(4, 0); err != nil {
		t.Errorf("zero-length removal at end should succeed, got %v", err)
	}
}

func TestClear(t *testing.T) {
	g := From(1, 2, 3)
	capBefore := g.Cap()
	g.Clear()
	if g.Len() != 0 {
		t.Errorf("expected empty buffer after Clear, got %d", g.Len())
	}
	if g.Cap() != capBefore {
		t.Errorf("Clear should retain capacity %d, got %d", capBefore, g.Cap())
	}
	g.Append(7)
	if g.At(0) != 7 {
		t.Errorf("buffer unusable after Clear")
	}
}

func TestIteration(t *testing.T) {
	g := From(1, 2, 3, 4)
	_ = g.Insert(2, 0) // put the gap in the middle

	var got []int
	for v := range g.Values() {
		got = append(got, v)
	}
	if diff := cmp.Diff([]int{1, 2, 0, 3, 4}, got); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}

	// Restartable.
	again := slices.Collect(g.Values())
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("second iteration differs (-first +second):\n%s", diff)
	}

	// Early stop.
	var seen []int
	for i, v := range g.All() {
		if i == 3 {
			break
		}
		seen = append(seen, v)
	}
	if diff := cmp.Diff([]int{1, 2, 0}, seen); diff != "" {
		t.Errorf("early stop mismatch (-want +got):\n%s", diff)
	}
}

func TestVacatedSlotsCleared(t *testing.T) {
	a, b := new(int), new(int)
	g := From(a, b)
	_ = g.Insert(0, nil) // moves the gap to the front
	_ = g.RemoveRange(1, 2)
	for i, p := range g.buf {
		if i >= g.gapStart && i < g.gapEnd && p != nil {
			t.Errorf("gap slot %d still references an element", i)
		}
	}
}

// TestAppendThenRemoveAlternate builds 1000 elements by appending and then
// removes every other one, comparing against a plain slice.
func TestAppendThenRemoveAlternate(t *testing.T) {
	g := New[int](0)
	var ref []int
	for i := 0; i < 1000; i++ {
		if err := g.Insert(i, i); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
		ref = slices.Insert(ref, i, i)
	}

	for i := 0; i < g.Len(); i++ {
		if err := g.RemoveAt(i); err != nil {
			t.Fatalf("remove %d failed: %v", i, err)
		}
		ref = slices.Delete(ref, i, i+1)
	}

	if g.Len() != 500 {
		t.Errorf("expected 500 elements, got %d", g.Len())
	}
	if diff := cmp.Diff(ref, g.Slice()); diff != "" {
		t.Errorf("mismatch against reference (-want +got):\n%s", diff)
	}
	for i, v := range g.All() {
		if v != 2*i+1 {
			t.Fatalf("element %d = %d, want %d", i, v, 2*i+1)
		}
	}
}

// TestMatchesSliceModel applies random operation sequences to both a gap
// buffer and a slice and checks they agree after every step.
func TestMatchesSliceModel(t *testing.T) {
	f := func(seed int64, n uint8) bool {
		r := rand.New(rand.NewSource(seed))
		g := New[int](1)
		var ref []int
		for step := 0; step < int(n)+1; step++ {
			switch op := r.Intn(4); {
			case op <= 1:
				i := r.Intn(len(ref) + 1)
				v := r.Int()
				if g.Insert(i, v) != nil {
					return false
				}
				ref = slices.Insert(ref, i, v)
			case op == 2 && len(ref) > 0:
				i := r.Intn(len(ref))
				count := r.Intn(len(ref)-i) + 1
				if g.RemoveRange(i, count) != nil {
					return false
				}
				ref = slices.Delete(ref, i, i+count)
			case len(ref) > 0:
				i := r.Intn(len(ref))
				v := r.Int()
				if g.Set(i, v) != nil {
					return false
				}
				ref[i] = v
			}
			if g.Len() != len(ref) || !slices.Equal(g.Slice(), ref) {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func BenchmarkInsertLocalized(b *testing.B) {
	g := New[int](0)
	for i := 0; i < b.N; i++ {
		_ = g.Insert(g.Len()/2, i)
		if g.Len() > 10000 {
			g.Clear()
		}
	}
}
