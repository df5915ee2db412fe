package buffer

import (
	"iter"
	"slices"
)

var (
	_ Buffer[any] = (*AppendingBuffer[any])(nil)
	_ Grower      = (*AppendingBuffer[any])(nil)
)

// AppendingBuffer keeps every pushed item in push order, so each push is one charge.
//
// The backing array is kept between flushes. Reset zeroes the stored items so they can be
// garbage collected while the capacitor is idle.
type AppendingBuffer[Item any] struct {
	items []Item
}

func Appending[Item any]() *AppendingBuffer[Item] {
	return &AppendingBuffer[Item]{}
}

// Grow makes room for at least n items without reallocation.
func (b *AppendingBuffer[Item]) Grow(n int) {
	if n < 0 {
		panic("n can't be < 0")
	}
	if extra := n - len(b.items); extra > 0 {
		b.items = slices.Grow(b.items, extra)
	}
}

func (b *AppendingBuffer[Item]) Push(item Item) {
	b.items = append(b.items, item)
}

func (b *AppendingBuffer[Item]) Size() int {
	return len(b.items)
}

func (b *AppendingBuffer[Item]) Iter() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, item := range b.items {
			if !yield(item) {
				return
			}
		}
	}
}

func (b *AppendingBuffer[Item]) Reset() {
	clear(b.items)
	b.items = b.items[:0]
}
