package graph

import (
	"strconv"
	"sync/atomic"
)

// ID identifies a node or a cluster within one tree. Node IDs and cluster
// IDs live in separate namespaces.
type ID uint64

// String returns the decimal representation used in DOT identifiers.
func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Allocator issues strictly increasing IDs starting at 0.
// It is safe for concurrent use; the zero value is ready to use.
type Allocator struct {
	next atomic.Uint64
}

// Next returns the next unused ID.
func (a *Allocator) Next() ID {
	return ID(a.next.Add(1) - 1)
}
