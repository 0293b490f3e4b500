package registry

import "github.com/Carmen-Shannon/oxy-shadow/engine/renderer"

// BufferWrite describes a single upload into a registry-owned buffer at a given byte offset.
type BufferWrite struct {
	Buffer renderer.BufferHandle
	Offset uint64
	Data   []byte
}
