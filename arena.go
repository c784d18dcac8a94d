package tsinfer

// Handle is a stable reference into an Arena. It remains valid for the
// lifetime of the arena even as the arena grows, and is never a raw
// pointer — just an index, per the "flat by construction" design used
// throughout this package.
type Handle int

// nilHandle marks the absence of a reference (the C implementation's NULL
// next pointer).
const nilHandle Handle = -1

// Arena is a growable, block-allocated object pool with an explicit free
// list. It hands out stable Handles rather than pointers, grows by whole
// blocks and never shrinks within a run, and is dropped (and its backing
// storage reclaimed by the garbage collector) en masse at teardown — the
// Go equivalent of the C implementation's object_heap_t slab allocator.
type Arena[T any] struct {
	blockSize int
	items     []T
	free      []Handle
}

// NewArena creates an Arena that grows by blockSize items at a time.
// blockSize must be >= 1.
func NewArena[T any](blockSize int) *Arena[T] {
	if blockSize < 1 {
		blockSize = 1
	}
	return &Arena[T]{blockSize: blockSize}
}

// Alloc reserves a slot, returning its stable handle. Reused slots (from
// Free) are preferred over growing the backing store.
func (a *Arena[T]) Alloc() Handle {
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		return h
	}
	if len(a.items) == cap(a.items) {
		grown := make([]T, len(a.items), len(a.items)+a.blockSize)
		copy(grown, a.items)
		a.items = grown
	}
	a.items = append(a.items, *new(T))
	return Handle(len(a.items) - 1)
}

// Get returns a pointer to the item at h. The pointer is only valid until
// the next Alloc/Reset call that might reallocate the backing store.
func (a *Arena[T]) Get(h Handle) *T {
	return &a.items[h]
}

// Free returns h to the free list for reuse by a future Alloc.
func (a *Arena[T]) Free(h Handle) {
	a.free = append(a.free, h)
}

// Reset clears all allocations, reusing the backing storage (and the
// free list) for the next run.
func (a *Arena[T]) Reset() {
	a.items = a.items[:0]
	a.free = a.free[:0]
}

// Len reports the number of slots handed out since the last Reset, i.e.
// the high-water mark of the backing store. Freed slots still count: the
// free list is not subtracted.
func (a *Arena[T]) Len() int {
	return len(a.items)
}
