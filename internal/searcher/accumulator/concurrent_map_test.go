package accumulator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndSnapshot(t *testing.T) {
	c := New(4)
	c.Add(5, 0.5)
	c.Add(1, 0.25)
	c.Add(5, 0.25)
	c.Add(3, 0)

	assert.Equal(t, []Entry{{ID: 1, Value: 0.25}, {ID: 3, Value: 0}, {ID: 5, Value: 0.75}}, c.Snapshot())
	assert.Equal(t, 3, c.Len())
}

func TestErase(t *testing.T) {
	c := New(3)
	c.Add(1, 1)
	c.Add(2, 2)
	c.Erase(1)
	c.Erase(42)

	assert.Equal(t, []Entry{{ID: 2, Value: 2}}, c.Snapshot())
}

func TestNewClampsShardCount(t *testing.T) {
	assert.Equal(t, 1, New(0).ShardCount())
	assert.Equal(t, 1, New(-3).ShardCount())
	assert.Equal(t, 8, New(8).ShardCount())
}

func TestEmptySnapshot(t *testing.T) {
	assert.Empty(t, New(2).Snapshot())
}

func TestConcurrentAdd(t *testing.T) {
	const (
		goroutines = 16
		perRoutine = 2000
		ids        = 97
	)
	c := New(7)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perRoutine; i++ {
				c.Add(i%ids, 1)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	require.Len(t, snap, ids)
	total := 0.0
	for i, e := range snap {
		assert.Equal(t, i, e.ID)
		total += e.Value
	}
	assert.Equal(t, float64(goroutines*perRoutine), total)
}

func TestConcurrentEraseAndAddOnDisjointIDs(t *testing.T) {
	c := New(5)
	for id := 0; id < 100; id++ {
		c.Add(id, 1)
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for id := 0; id < 100; id += 2 {
			c.Erase(id)
		}
	}()
	go func() {
		defer wg.Done()
		for id := 1; id < 100; id += 2 {
			c.Add(id, 1)
		}
	}()
	wg.Wait()

	snap := c.Snapshot()
	require.Len(t, snap, 50)
	for _, e := range snap {
		assert.Equal(t, 1, e.ID%2)
		assert.Equal(t, 2.0, e.Value)
	}
}

func BenchmarkConcurrentAdd(b *testing.B) {
	c := New(16)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Add(i%1024, 0.5)
			i++
		}
	})
}
