package cache

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_Basic(t *testing.T) {
	c := New[string](Options{MaxSize: 3})

	c.Set("a", "value_a")
	c.Set("b", "value_b")
	c.Set("c", "value_c")

	assert.Equal(t, 3, c.Len())

	val, found := c.Get("a")
	require.True(t, found)
	assert.Equal(t, "value_a", val)

	val, found = c.Get("missing")
	assert.False(t, found)
	assert.Equal(t, "", val)
}

func TestLRU_Eviction(t *testing.T) {
	var evicted []string
	c := New[string](Options{MaxSize: 3, OnEvict: func(key string) { evicted = append(evicted, key) }})

	c.Set("a", "value_a")
	c.Set("b", "value_b")
	c.Set("c", "value_c")

	// Access 'a' to make it most recently used
	c.Get("a")

	// Add new item - should evict 'b' (least recently used)
	c.Set("d", "value_d")

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, []string{"d", "a", "c"}, c.Keys())

	_, found := c.Get("b")
	assert.False(t, found, "b should have been evicted")
}

func TestLRU_Update(t *testing.T) {
	c := New[int](Options{MaxSize: 2})
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a", "b"}, c.Keys())
	v, _ := c.Get("a")
	assert.Equal(t, 3, v)
}

func TestLRU_DeleteClear(t *testing.T) {
	c := New[string](Options{})
	c.Set("a", "value_a")
	c.Set("b", "value_b")
	c.Set("c", "value_c")

	c.Delete("b")
	c.Delete("nope")
	assert.Equal(t, []string{"c", "a"}, c.Keys())

	c.Delete("c")
	c.Delete("a")
	assert.Empty(t, c.Keys())
	c.Set("d", "value_d")
	assert.Equal(t, []string{"d"}, c.Keys())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Stats{}, c.Stats())
}

func TestLRU_GetOrCompute(t *testing.T) {
	c := New[[]int64](Options{})
	calls := 0
	compute := func() ([]int64, error) {
		calls++
		return []int64{0, 1, 2}, nil
	}

	v, err := c.GetOrCompute("Main", compute)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, v)

	_, err = c.GetOrCompute("Main", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = c.GetOrCompute("Other", func() ([]int64, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Len())

	assert.Equal(t, Stats{Length: 1, HitCount: 1, MissCount: 2}, c.Stats())
}

type report struct {
	Codes []string `msgpack:"codes"`
	Paths int      `msgpack:"paths"`
}

func TestLRU_SaveLoad(t *testing.T) {
	c := New[report](Options{MaxSize: 10})
	c.Set("k1", report{Codes: []string{"LoopNoProgress"}, Paths: 2})
	c.Set("k2", report{Paths: 1})
	c.Get("k1")

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	c2 := New[report](Options{MaxSize: 10})
	require.NoError(t, c2.Load(&buf))

	assert.Equal(t, []string{"k1", "k2"}, c2.Keys())
	v, found := c2.Get("k1")
	require.True(t, found)
	assert.Equal(t, report{Codes: []string{"LoopNoProgress"}, Paths: 2}, v)
}

func TestLRU_LoadTruncates(t *testing.T) {
	c := New[int](Options{})
	for i, k := range []string{"a", "b", "c"} {
		c.Set(k, i)
	}
	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	small := New[int](Options{MaxSize: 2})
	require.NoError(t, small.Load(&buf))
	assert.Equal(t, []string{"c", "b"}, small.Keys())
}

func TestLRU_LoadInvalid(t *testing.T) {
	c := New[int](Options{})
	err := c.Load(bytes.NewBufferString("not msgpack"))
	assert.Error(t, err)
}

func TestLRU_PersistToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "reports.msgpack")

	c := New[string](Options{})
	c.Set("k", "v")
	require.NoError(t, c.PersistToFile(path))

	c2 := New[string](Options{})
	require.NoError(t, c2.LoadFromFile(path))
	v, found := c2.Get("k")
	require.True(t, found)
	assert.Equal(t, "v", v)

	// Missing file is not an error
	c3 := New[string](Options{})
	require.NoError(t, c3.LoadFromFile(filepath.Join(dir, "absent")))
	assert.Equal(t, 0, c3.Len())
}
