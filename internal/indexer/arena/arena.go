// Package arena provides the append-only text store that owns every indexed
// document's content.
//
// Index keys are substrings of arena blocks, so a block must stay reachable
// for as long as the index does. Blocks are never released or reused, even
// after the document that produced them has been removed.
package arena

import (
	"strings"
	"sync"
)

// Handle identifies a block. Handles are dense and assigned in append order.
type Handle int

type Arena struct {
	mu     sync.RWMutex
	blocks []string
	size   int64
}

func New() *Arena {
	return &Arena{}
}

// Append copies text into a new block and returns its handle along with the
// owned copy. Callers must derive index keys from the returned string, not
// from their own buffer.
func (a *Arena) Append(text string) (Handle, string) {
	owned := strings.Clone(text)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.blocks = append(a.blocks, owned)
	a.size += int64(len(owned))
	return Handle(len(a.blocks) - 1), owned
}

// Text returns the block for h, or "" and false for an unknown handle.
func (a *Arena) Text(h Handle) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if h < 0 || int(h) >= len(a.blocks) {
		return "", false
	}
	return a.blocks[h], true
}

// Len returns the number of blocks ever appended.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.blocks)
}

// Size returns the total bytes held.
func (a *Arena) Size() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.size
}
