// Package gob encodes a batch as a single gob value, so the type description is written once
// per batch rather than once per item.
package gob

import (
	"bytes"
	"encoding/gob"
	"iter"
	"slices"

	"github.com/teenjuna/capacitor/codec"
)

var _ codec.Codec[any] = (*Codec[any])(nil)

type Codec[Item any] struct {
	buf *bytes.Buffer
}

func New[Item any]() *Codec[Item] {
	return &Codec[Item]{
		buf: new(bytes.Buffer),
	}
}

// Encode returns no data for an empty batch.
func (c *Codec[Item]) Encode(batch iter.Seq[Item]) ([]byte, error) {
	items := slices.Collect(batch)
	if len(items) == 0 {
		return nil, nil
	}

	c.buf.Reset()
	if err := gob.NewEncoder(c.buf).Encode(items); err != nil {
		return nil, err
	}

	return bytes.Clone(c.buf.Bytes()), nil
}

func (c *Codec[Item]) Decode(data []byte, push func(Item)) error {
	if len(data) == 0 {
		return nil
	}

	var items []Item
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&items); err != nil {
		return err
	}
	for _, item := range items {
		push(item)
	}

	return nil
}
