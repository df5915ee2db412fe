// Package json encodes batches as newline-delimited JSON, one item per line.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"iter"

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

func (c *Codec[Item]) Encode(batch iter.Seq[Item]) ([]byte, error) {
	c.buf.Reset()
	enc := json.NewEncoder(c.buf)

	for item := range batch {
		if err := enc.Encode(item); err != nil {
			return nil, err
		}
	}

	return bytes.Clone(c.buf.Bytes()), nil
}

func (c *Codec[Item]) Decode(data []byte, push func(Item)) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	for {
		var item Item
		err := dec.Decode(&item)
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		push(item)
	}
}
