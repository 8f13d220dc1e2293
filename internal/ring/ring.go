// Package ring provides a fixed-capacity ring buffer for detector history
// windows. Once full, pushing a new element overwrites the oldest one; the
// buffer never reallocates.
package ring

// Ring is a fixed-capacity FIFO buffer. The zero value is not usable;
// create instances with New.
type Ring[T any] struct {
	buf  []T
	head int // index of the oldest element
	n    int // number of stored elements
}

// New creates a Ring holding at most capacity elements.
// Capacities below 1 are clamped to 1.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element if the buffer is full.
func (r *Ring[T]) Push(v T) {
	if r.n < len(r.buf) {
		r.buf[(r.head+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int { return r.n }

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// At returns the i-th element, where 0 is the oldest.
// It panics if i is out of range, matching slice semantics.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.n {
		panic("ring: index out of range")
	}
	return r.buf[(r.head+i)%len(r.buf)]
}

// Last returns the newest element, or false if the buffer is empty.
func (r *Ring[T]) Last() (T, bool) {
	if r.n == 0 {
		var zero T
		return zero, false
	}
	return r.At(r.n - 1), true
}

// Values copies the elements into a new slice, oldest first.
func (r *Ring[T]) Values() []T {
	out := make([]T, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.At(i)
	}
	return out
}

// Clear discards all elements. Capacity is retained.
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.head = 0
	r.n = 0
}
