package arena

import (
	"fmt"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaAppend(t *testing.T) {
	a := New()

	h1, owned1 := a.Append("cat in the city")
	h2, _ := a.Append("green cat")

	assert.Equal(t, Handle(0), h1)
	assert.Equal(t, Handle(1), h2)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, int64(len("cat in the city")+len("green cat")), a.Size())

	text, ok := a.Text(h1)
	require.True(t, ok)
	assert.Equal(t, "cat in the city", text)
	assert.Same(t, unsafe.StringData(owned1), unsafe.StringData(text))
}

func TestArenaOwnsCopy(t *testing.T) {
	a := New()
	buf := []byte("mutable buffer")
	input := string(buf[:7])

	_, owned := a.Append(input)
	assert.NotSame(t, unsafe.StringData(input), unsafe.StringData(owned))
	assert.Equal(t, "mutable", owned)
}

func TestArenaUnknownHandle(t *testing.T) {
	a := New()
	a.Append("x")

	_, ok := a.Text(Handle(5))
	assert.False(t, ok)
	_, ok = a.Text(Handle(-1))
	assert.False(t, ok)
}

func TestArenaConcurrentAppend(t *testing.T) {
	a := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a.Append(fmt.Sprintf("doc-%d", i))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, a.Len())
}
