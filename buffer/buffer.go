// This package contains the [Buffer] interface used by the capacitor to hold charges, and the
// implementations shipped with it.
package buffer

import "iter"

// Buffer holds the items accumulated by a capacitor between flushes.
//
// Implementations are not considered thread-safe. The capacitor serializes every call.
type Buffer[Item any] interface {
	// Push adds an item to the buffer.
	Push(item Item)
	// Size returns the number of items in the buffer. This is the charge count compared against
	// the capacitor's capacity.
	Size() int
	// Iter returns a sequence of all items in the buffer, in the order they must be flushed.
	Iter() iter.Seq[Item]
	// Reset clears all items from the buffer.
	Reset()
}

// Grower is implemented by buffers that can reserve room ahead of time. The capacitor grows its
// buffer to the capacity once, at construction.
type Grower interface {
	Grow(n int)
}
