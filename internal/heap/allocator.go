// Package heap hands out small integer handles for live objects so they can
// cross a C ABI without exposing Go pointers.
//
// Freed handles are kept in a min-heap and reused smallest-first before a new
// handle is minted. The allocator does no locking; callers serialize access.
package heap

import (
	"container/heap"
	"errors"
	"sort"
)

// ErrNotFound is returned when a handle does not name a live object.
var ErrNotFound = errors.New("handle not found")

// freeList is a min-heap of released handles.
type freeList []int

func (f freeList) Len() int           { return len(f) }
func (f freeList) Less(i, j int) bool { return f[i] < f[j] }
func (f freeList) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }

func (f *freeList) Push(x any) { *f = append(*f, x.(int)) }

func (f *freeList) Pop() any {
	old := *f
	n := len(old)
	x := old[n-1]
	*f = old[:n-1]
	return x
}

// Allocator maps handles to objects of a single type.
type Allocator[T any] struct {
	objects map[int]*T
	free    freeList
	next    int
	peak    int
}

// New returns an empty allocator whose first handle is 0.
func New[T any]() *Allocator[T] {
	return &Allocator[T]{objects: make(map[int]*T)}
}

// Add stores v and returns its handle.
func (a *Allocator[T]) Add(v T) int {
	var h int
	if a.free.Len() > 0 {
		h = heap.Pop(&a.free).(int)
	} else {
		h = a.next
		a.next++
	}
	box := new(T)
	*box = v
	a.objects[h] = box
	if len(a.objects) > a.peak {
		a.peak = len(a.objects)
	}
	return h
}

// Retrieve returns the object stored under h.
func (a *Allocator[T]) Retrieve(h int) (T, error) {
	box, ok := a.objects[h]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return *box, nil
}

// Shared returns the cell holding h's object. Writes through the cell replace
// the stored object. A holder keeps the cell alive after Delete.
func (a *Allocator[T]) Shared(h int) (*T, error) {
	box, ok := a.objects[h]
	if !ok {
		return nil, ErrNotFound
	}
	return box, nil
}

// Replace overwrites the object stored under a live handle.
func (a *Allocator[T]) Replace(h int, v T) error {
	box, ok := a.objects[h]
	if !ok {
		return ErrNotFound
	}
	*box = v
	return nil
}

// Delete releases h. It reports false if h was not live.
func (a *Allocator[T]) Delete(h int) bool {
	if _, ok := a.objects[h]; !ok {
		return false
	}
	delete(a.objects, h)
	heap.Push(&a.free, h)
	return true
}

// Exists reports whether h is live.
func (a *Allocator[T]) Exists(h int) bool {
	_, ok := a.objects[h]
	return ok
}

// LiveHandles returns every live handle in ascending order.
func (a *Allocator[T]) LiveHandles() []int {
	out := make([]int, 0, len(a.objects))
	for h := range a.objects {
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}

// Len returns the number of live handles.
func (a *Allocator[T]) Len() int { return len(a.objects) }

// Peak returns the highest number of simultaneously live handles since the
// last Reset or ResetPeak.
func (a *Allocator[T]) Peak() int { return a.peak }

// ResetPeak sets the high-water mark to the current live count.
func (a *Allocator[T]) ResetPeak() { a.peak = len(a.objects) }

// Reset drops every object and restarts numbering at 0.
func (a *Allocator[T]) Reset() {
	a.objects = make(map[int]*T)
	a.free = a.free[:0]
	a.next = 0
	a.peak = 0
}
