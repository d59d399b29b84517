package effects

// ring is a fixed-capacity FIFO. Pushing into a full ring evicts the oldest
// item.
type ring[T any] struct {
	buf   []T
	start int
	n     int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) Len() int { return r.n }

func (r *ring[T]) Cap() int { return len(r.buf) }

// At returns the i-th item, oldest first.
func (r *ring[T]) At(i int) *T {
	return &r.buf[(r.start+i)%len(r.buf)]
}

func (r *ring[T]) Push(v T) {
	if len(r.buf) == 0 {
		return
	}
	if r.n == len(r.buf) {
		r.buf[r.start] = v
		r.start = (r.start + 1) % len(r.buf)
		return
	}
	r.buf[(r.start+r.n)%len(r.buf)] = v
	r.n++
}

// Retain keeps the items for which keep returns true, preserving order. keep
// may mutate the item it is given.
func (r *ring[T]) Retain(keep func(*T) bool) {
	w := 0
	for i := 0; i < r.n; i++ {
		it := r.At(i)
		if !keep(it) {
			continue
		}
		if w != i {
			*r.At(w) = *it
		}
		w++
	}
	var zero T
	for i := w; i < r.n; i++ {
		*r.At(i) = zero
	}
	r.n = w
}

// Slice copies the items out, oldest first.
func (r *ring[T]) Slice() []T {
	out := make([]T, r.n)
	for i := range out {
		out[i] = *r.At(i)
	}
	return out
}
