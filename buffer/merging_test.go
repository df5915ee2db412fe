package buffer_test

import (
	"slices"
	"testing"

	"github.com/teenjuna/capacitor"
	"github.com/teenjuna/capacitor/buffer"
	"github.com/teenjuna/capacitor/internal/testing/require"
)

var _ capacitor.Buffer[any] = (*buffer.MergingBuffer[any, int])(nil)

func TestMergingBuffer(t *testing.T) {
	type Update struct {
		Key   string
		Count int
	}

	buffer := buffer.Merging(
		func(u Update) string { return u.Key },
		func(u1, u2 Update) Update { return Update{Key: u1.Key, Count: u1.Count + u2.Count} },
	)
	require.Equal(t, buffer.Size(), 0)

	buffer.Push(Update{Key: "b", Count: 1})
	buffer.Push(Update{Key: "a", Count: 1})
	buffer.Push(Update{Key: "b", Count: 2})
	buffer.Push(Update{Key: "c", Count: 5})
	buffer.Push(Update{Key: "a", Count: 3})
	require.Equal(t, buffer.Size(), 3)

	// Keys keep the order of their first push.
	require.Equal(t, slices.Collect(buffer.Iter()), []Update{
		{Key: "b", Count: 3},
		{Key: "a", Count: 4},
		{Key: "c", Count: 5},
	})

	buffer.Reset()
	require.Equal(t, buffer.Size(), 0)
	require.Equal(t, len(slices.Collect(buffer.Iter())), 0)

	// A key seen before the reset starts a fresh entry.
	buffer.Push(Update{Key: "a", Count: 1})
	require.Equal(t, slices.Collect(buffer.Iter()), []Update{{Key: "a", Count: 1}})
}

func TestMergingBufferValidation(t *testing.T) {
	require.PanicWithError(t, "key func can't be nil", func() {
		buffer.Merging[int, int](nil, func(a, b int) int { return a + b })
	})
	require.PanicWithError(t, "merge func can't be nil", func() {
		buffer.Merging(func(i int) int { return i }, nil)
	})
}
