// Package concat provides a list which is built by cheaply appending whole sub-lists and
// which only copies them into one dense slice when random access requires it.
package concat

import (
	"errors"
	"fmt"
)

var (
	errNotConsolidated = errors.New("concat: list must be consolidated")
)

// List starts out segmented: Add and AddAll append sub-lists by reference. Once it is
// consolidated, the segments are copied into one dense slice and the list stays dense until
// Clear is called.
//
// Consolidation happens on an explicit call to Consolidate or Slice, and on any Get which is
// not at index zero, at the previous index, at the index before that, or at the next index.
type List[T comparable] struct {
	segments [][]T
	size     int

	dense        []T
	consolidated bool

	// Membership of every element added; kept in both states.
	seen map[T]int

	// Trailing cache for sequential Get while segmented.
	seg, off    int
	prevIdx     int
	prev        T
	prePrev     T
	havePrePrev bool
}

func New[T comparable]() *List[T] {
	l := &List[T]{}
	l.Clear()
	return l
}

func (l *List[T]) Clear() {
	l.segments = nil
	l.size = 0
	l.dense = nil
	l.consolidated = false
	l.seen = map[T]int{}
	l.resetWalk()
}

func (l *List[T]) resetWalk() {
	var zero T
	l.seg = 0
	l.off = 0
	l.prevIdx = -1
	l.prev = zero
	l.prePrev = zero
	l.havePrePrev = false
}

func (l *List[T]) Consolidated() bool {
	return l.consolidated
}

// Consolidate copies all segments into one dense slice; afterwards the list behaves as a
// plain slice.
func (l *List[T]) Consolidate() {
	if l.consolidated {
		return
	}
	dense := make([]T, 0, l.size)
	for _, seg := range l.segments {
		dense = append(dense, seg...)
	}
	l.dense = dense
	l.segments = nil
	l.consolidated = true
	l.resetWalk()
}

func (l *List[T]) Add(t T) {
	l.seen[t] += 1
	l.size += 1
	if l.consolidated {
		l.dense = append(l.dense, t)
	} else {
		l.segments = append(l.segments, []T{t})
	}
}

// AddAll appends ts by reference while the list is segmented; the caller must not change ts
// afterwards.
func (l *List[T]) AddAll(ts []T) {
	if len(ts) == 0 {
		return
	}
	for _, t := range ts {
		l.seen[t] += 1
	}
	l.size += len(ts)
	if l.consolidated {
		l.dense = append(l.dense, ts...)
	} else {
		l.segments = append(l.segments, ts)
	}
}

func (l *List[T]) Size() int {
	return l.size
}

func (l *List[T]) IsEmpty() bool {
	return l.size == 0
}

func (l *List[T]) Contains(t T) bool {
	return l.seen[t] > 0
}

func (l *List[T]) outOfRange(idx int) error {
	return fmt.Errorf("concat: index %d out of range [0:%d]", idx, l.size)
}

// next advances the sequential walk by one element.
func (l *List[T]) next() (T, bool) {
	for l.seg < len(l.segments) {
		seg := l.segments[l.seg]
		if l.off < len(seg) {
			t := seg[l.off]
			l.off += 1
			return t, true
		}
		l.seg += 1
		l.off = 0
	}
	var zero T
	return zero, false
}

func (l *List[T]) Get(idx int) (T, error) {
	var zero T
	if idx < 0 || idx >= l.size {
		return zero, l.outOfRange(idx)
	}
	if l.consolidated {
		return l.dense[idx], nil
	}

	switch {
	case idx == 0:
		l.resetWalk()
		t, _ := l.next()
		l.prevIdx = 0
		l.prev = t
		return t, nil
	case idx == l.prevIdx:
		return l.prev, nil
	case idx == l.prevIdx-1 && l.havePrePrev:
		return l.prePrev, nil
	case idx == l.prevIdx+1:
		t, ok := l.next()
		if !ok {
			return zero, l.outOfRange(idx)
		}
		l.prePrev = l.prev
		l.havePrePrev = true
		l.prev = t
		l.prevIdx = idx
		return t, nil
	}

	l.Consolidate()
	return l.dense[idx], nil
}

// Insert and Set require a consolidated list.
func (l *List[T]) Insert(idx int, t T) error {
	if !l.consolidated {
		return errNotConsolidated
	}
	if idx < 0 || idx > l.size {
		return l.outOfRange(idx)
	}
	var zero T
	l.dense = append(l.dense, zero)
	copy(l.dense[idx+1:], l.dense[idx:])
	l.dense[idx] = t
	l.seen[t] += 1
	l.size += 1
	return nil
}

func (l *List[T]) Set(idx int, t T) (T, error) {
	var zero T
	if !l.consolidated {
		return zero, errNotConsolidated
	}
	if idx < 0 || idx >= l.size {
		return zero, l.outOfRange(idx)
	}
	old := l.dense[idx]
	l.dense[idx] = t
	l.seen[t] += 1
	if l.seen[old] -= 1; l.seen[old] == 0 {
		delete(l.seen, old)
	}
	return old, nil
}

// Each calls fn for every element in order until fn returns false. It does not consolidate
// the list.
func (l *List[T]) Each(fn func(t T) bool) {
	if l.consolidated {
		for _, t := range l.dense {
			if !fn(t) {
				return
			}
		}
		return
	}
	for _, seg := range l.segments {
		for _, t := range seg {
			if !fn(t) {
				return
			}
		}
	}
}

// Slice consolidates the list and returns the dense slice; it is shared with the list.
func (l *List[T]) Slice() []T {
	l.Consolidate()
	return l.dense
}
