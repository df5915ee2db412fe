package buffer

import (
	"iter"
	"slices"
)

var (
	_ Buffer[any] = (*MergingBuffer[any, string])(nil)
	_ Grower      = (*MergingBuffer[any, string])(nil)
)

// MergingBuffer coalesces items that share a key using mergeFunc. Each key counts as one charge
// and keys are flushed in the order they were first pushed.
type MergingBuffer[Item any, Key comparable] struct {
	items     []Item
	index     map[Key]int
	keyFunc   func(Item) Key
	mergeFunc func(Item, Item) Item
}

func Merging[Item any, Key comparable](
	keyFunc func(Item) Key,
	mergeFunc func(Item, Item) Item,
) *MergingBuffer[Item, Key] {
	if keyFunc == nil {
		panic("key func can't be nil")
	}
	if mergeFunc == nil {
		panic("merge func can't be nil")
	}
	return &MergingBuffer[Item, Key]{
		items:     make([]Item, 0),
		index:     make(map[Key]int),
		keyFunc:   keyFunc,
		mergeFunc: mergeFunc,
	}
}

// Grow makes room for at least n distinct keys.
func (b *MergingBuffer[Item, Key]) Grow(n int) {
	if n < 0 {
		panic("n can't be < 0")
	}
	if extra := n - len(b.items); extra > 0 {
		b.items = slices.Grow(b.items, extra)
	}
	if len(b.index) == 0 {
		b.index = make(map[Key]int, n)
	}
}

func (b *MergingBuffer[Item, Key]) Push(item Item) {
	key := b.keyFunc(item)
	if i, ok := b.index[key]; ok {
		b.items[i] = b.mergeFunc(b.items[i], item)
		return
	}
	b.index[key] = len(b.items)
	b.items = append(b.items, item)
}

func (b *MergingBuffer[Item, Key]) Size() int {
	return len(b.items)
}

func (b *MergingBuffer[Item, Key]) Iter() iter.Seq[Item] {
	return slices.Values(b.items)
}

func (b *MergingBuffer[Item, Key]) Reset() {
	clear(b.index)
	clear(b.items)
	b.items = b.items[:0]
}
