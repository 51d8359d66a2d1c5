// Package accumulator provides a sharded map from document id to a running
// float total. Each shard has its own mutex, so goroutines adding scores for
// documents in different shards never wait on each other.
package accumulator

import (
	"encoding/binary"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Entry is one merged (id, total) pair.
type Entry struct {
	ID    int
	Value float64
}

type shard struct {
	mu     sync.Mutex
	values map[int]float64
}

// ConcurrentMap is scoped to a single search or removal call.
type ConcurrentMap struct {
	shards []shard
}

// New creates a map with shardCount shards (at least one).
func New(shardCount int) *ConcurrentMap {
	if shardCount < 1 {
		shardCount = 1
	}
	c := &ConcurrentMap{shards: make([]shard, shardCount)}
	for i := range c.shards {
		c.shards[i].values = make(map[int]float64)
	}
	return c
}

func (c *ConcurrentMap) shardFor(id int) *shard {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], uint64(id))
	return &c.shards[xxhash.Sum64(key[:])%uint64(len(c.shards))]
}

// Add adds delta to id's total, creating it at zero first if absent.
func (c *ConcurrentMap) Add(id int, delta float64) {
	s := c.shardFor(id)
	s.mu.Lock()
	s.values[id] += delta
	s.mu.Unlock()
}

// Erase removes id if present.
func (c *ConcurrentMap) Erase(id int) {
	s := c.shardFor(id)
	s.mu.Lock()
	delete(s.values, id)
	s.mu.Unlock()
}

// Snapshot merges all shards into one slice ordered by id. Shards are locked
// one at a time. Call it only after every Add and Erase has returned.
func (c *ConcurrentMap) Snapshot() []Entry {
	var out []Entry
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for id, v := range s.values {
			out = append(out, Entry{ID: id, Value: v})
		}
		s.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return a.ID - b.ID
	})
	return out
}

// Len returns the number of ids currently held.
func (c *ConcurrentMap) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.values)
		s.mu.Unlock()
	}
	return n
}

func (c *ConcurrentMap) ShardCount() int {
	return len(c.shards)
}
