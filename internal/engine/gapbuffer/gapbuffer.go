package gapbuffer

import (
	"errors"
	"fmt"
	"iter"
)

// DefaultCapacity is the backing capacity used when New is given a
// non-positive capacity.
const DefaultCapacity = 16

// ErrIndexOutOfRange is returned when an index falls outside the buffer.
var ErrIndexOutOfRange = errors.New("index out of range")

// GapBuffer is an ordered sequence of T with a movable gap of unused slots.
//
// Elements before the gap live in buf[:gapStart], elements after it in
// buf[gapEnd:]. Edits move the gap to the edit point first, so a run of
// edits at or near the same index costs O(1) each after the initial move.
//
// A GapBuffer is not safe for concurrent use.
type GapBuffer[T any] struct {
	buf      []T
	gapStart int
	gapEnd   int
}

// New creates an empty gap buffer with the given backing capacity.
func New[T any](capacity int) *GapBuffer[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &GapBuffer[T]{
		buf:    make([]T, capacity),
		gapEnd: capacity,
	}
}

// From creates a gap buffer holding items, with the gap positioned at the end.
func From[T any](items ...T) *GapBuffer[T] {
	capacity := len(items) * 2
	if capacity < DefaultCapacity {
		capacity = DefaultCapacity
	}
	g := New[T](capacity)
	copy(g.buf, items)
	g.gapStart = len(items)
	return g
}

// Len returns the number of elements in the buffer.
func (g *GapBuffer[T]) Len() int {
	return len(g.buf) - (g.gapEnd - g.gapStart)
}

// Cap returns the capacity of the backing storage.
func (g *GapBuffer[T]) Cap() int {
	return len(g.buf)
}

// Gap returns the physical bounds of the gap. It is intended for diagnostics.
func (g *GapBuffer[T]) Gap() (start, end int) {
	return g.gapStart, g.gapEnd
}

// Get returns the element at index.
func (g *GapBuffer[T]) Get(index int) (T, error) {
	if index < 0 || index >= g.Len() {
		var zero T
		return zero, g.rangeError(index)
	}
	return g.buf[g.physical(index)], nil
}

// Set replaces the element at index.
func (g *GapBuffer[T]) Set(index int, value T) error {
	if index < 0 || index >= g.Len() {
		return g.rangeError(index)
	}
	g.buf[g.physical(index)] = value
	return nil
}

// At returns the element at index without an error result.
// It panics if index is out of range, like slice indexing.
func (g *GapBuffer[T]) At(index int) T {
	if index < 0 || index >= g.Len() {
		panic(g.rangeError(index))
	}
	return g.buf[g.physical(index)]
}

// Ptr returns a pointer to the element at index, valid until the next
// structural edit. It panics if index is out of range.
func (g *GapBuffer[T]) Ptr(index int) *T {
	if index < 0 || index >= g.Len() {
		panic(g.rangeError(index))
	}
	return &g.buf[g.physical(index)]
}

// Insert inserts value before index. An index equal to Len appends.
func (g *GapBuffer[T]) Insert(index int, value T) error {
	if index < 0 || index > g.Len() {
		return g.rangeError(index)
	}
	g.moveGap(index)
	if g.gapStart == g.gapEnd {
		g.grow(1)
	}
	g.buf[g.gapStart] = value
	g.gapStart++
	return nil
}

// InsertRange inserts values before index, preserving their order.
func (g *GapBuffer[T]) InsertRange(index int, values ...T) error {
	if index < 0 || index > g.Len() {
		return g.rangeError(index)
	}
	if len(values) == 0 {
		return nil
	}
	g.moveGap(index)
	if g.gapEnd-g.gapStart < len(values) {
		g.grow(len(values))
	}
	copy(g.buf[g.gapStart:], values)
	g.gapStart += len(values)
	return nil
}

// Append adds value to the end of the buffer.
func (g *GapBuffer[T]) Append(value T) {
	// Cannot fail: Len is always a valid insert index.
	_ = g.Insert(g.Len(), value)
}

// RemoveAt removes the element at index.
func (g *GapBuffer[T]) RemoveAt(index int) error {
	return g.RemoveRange(index, 1)
}

// RemoveRange removes count elements starting at index.
func (g *GapBuffer[T]) RemoveRange(index, count int) error {
	if count < 0 {
		return fmt.Errorf("negative count %d: %w", count, ErrIndexOutOfRange)
	}
	if index < 0 || index+count > g.Len() {
		return g.rangeError(index)
	}
	if count == 0 {
		return nil
	}
	g.moveGap(index)
	clear(g.buf[g.gapEnd : g.gapEnd+count])
	g.gapEnd += count
	return nil
}

// Clear removes all elements. The backing capacity is retained.
func (g *GapBuffer[T]) Clear() {
	clear(g.buf)
	g.gapStart = 0
	g.gapEnd = len(g.buf)
}

// All returns an iterator over index/value pairs in logical order.
// Mutating the buffer during iteration is undefined.
func (g *GapBuffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		i := 0
		for _, v := range g.buf[:g.gapStart] {
			if !yield(i, v) {
				return
			}
			i++
		}
		for _, v := range g.buf[g.gapEnd:] {
			if !yield(i, v) {
				return
			}
			i++
		}
	}
}

// Values returns an iterator over the elements in logical order.
func (g *GapBuffer[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range g.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Slice returns a copy of the elements in logical order.
func (g *GapBuffer[T]) Slice() []T {
	out := make([]T, 0, g.Len())
	out = append(out, g.buf[:g.gapStart]...)
	return append(out, g.buf[g.gapEnd:]...)
}

// physical maps a logical index to its slot in buf.
func (g *GapBuffer[T]) physical(index int) int {
	if index < g.gapStart {
		return index
	}
	return index + (g.gapEnd - g.gapStart)
}

// moveGap positions the gap so that it begins at logical index pos.
// Slots vacated by the move are zeroed so stale references can be collected.
func (g *GapBuffer[T]) moveGap(pos int) {
	switch {
	case pos < g.gapStart:
		n := g.gapStart - pos
		copy(g.buf[g.gapEnd-n:g.gapEnd], g.buf[pos:g.gapStart])
		oldStart := g.gapStart
		g.gapStart = pos
		g.gapEnd -= n
		clear(g.buf[pos:min(oldStart, g.gapEnd)])
	case pos > g.gapStart:
		n := pos - g.gapStart
		copy(g.buf[g.gapStart:pos], g.buf[g.gapEnd:g.gapEnd+n])
		oldEnd := g.gapEnd
		g.gapStart = pos
		g.gapEnd += n
		clear(g.buf[max(pos, oldEnd):g.gapEnd])
	}
}

// grow enlarges the gap to hold at least need more elements.
// The backing storage at least doubles.
func (g *GapBuffer[T]) grow(need int) {
	length := g.Len()
	newCap := len(g.buf) * 2
	if newCap < length+need {
		newCap = length + need
	}
	if newCap < DefaultCapacity {
		newCap = DefaultCapacity
	}

	tail := len(g.buf) - g.gapEnd
	buf := make([]T, newCap)
	copy(buf, g.buf[:g.gapStart])
	copy(buf[newCap-tail:], g.buf[g.gapEnd:])

	g.buf = buf
	g.gapEnd = newCap - tail
}

func (g *GapBuffer[T]) rangeError(index int) error {
	return fmt.Errorf("index %d with length %d: %w", index, g.Len(), ErrIndexOutOfRange)
}
