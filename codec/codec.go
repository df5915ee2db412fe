// This package contains the [Codec] interface used by the sinks to serialize flushed batches, and
// implementations inside subpackages.
package codec

import "iter"

// Codec encodes and decodes batches of items.
//
// Implementations are not considered thread-safe.
type Codec[Item any] interface {
	// Encode serializes a sequence of items into a byte slice. The returned slice is not reused
	// by the codec.
	Encode(batch iter.Seq[Item]) ([]byte, error)
	// Decode deserializes a byte slice into items, pushing each to the provided function.
	Decode(data []byte, push func(Item)) error
}
