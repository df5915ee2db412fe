package capacitor

import "github.com/teenjuna/capacitor/codec"

// Codec serializes flushed batches for the sinks. See package [codec].
type Codec[Item any] = codec.Codec[Item]
