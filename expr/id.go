// SPDX-License-Identifier: MIT

package expr

import "sync/atomic"

// ID identifies a variable or constant. IDs are unique per allocator; their
// numeric order carries no meaning beyond distinct identity.
type ID uint64

// Allocator hands out monotonically increasing IDs and is safe for
// concurrent use.
type Allocator struct {
	next atomic.Uint64
}

// Next returns a fresh ID (the first one is 1).
func (a *Allocator) Next() ID {
	return ID(a.next.Add(1))
}

// Reset rewinds the allocator so the next ID is 1 again.
func (a *Allocator) Reset() {
	a.next.Store(0)
}

// defaultAllocator backs every constructor that is not given an explicit
// allocator.
var defaultAllocator Allocator

// NextID returns a fresh ID from the process-wide allocator.
func NextID() ID { return defaultAllocator.Next() }

// ResetIDs rewinds the process-wide allocator. Tests call it to get stable
// IDs; it must not race with concurrent construction.
func ResetIDs() { defaultAllocator.Reset() }
