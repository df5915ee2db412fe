package capacitor

import "github.com/teenjuna/capacitor/buffer"

// Buffer holds charges between flushes. See package [buffer] for the implementations.
//
// Buffers are not considered thread-safe: the capacitor serializes every call to them.
type Buffer[Item any] = buffer.Buffer[Item]
