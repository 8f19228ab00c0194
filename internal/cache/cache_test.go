package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/bodycomp/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("jp7", "masculino", "30")
	assert.Equal(t, a, Key("jp7", "masculino", "30"))
	assert.NotEqual(t, a, Key("jp7", "feminino", "30"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.Regexp(t, `^bodycomp:v1:[0-9a-f]{64}$`, a)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("a", []byte("1"), 0))
	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Minute)
	require.NoError(t, c.Set("k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("narrative")

	require.NoError(t, c.Set(key, []byte("resumo"), 0))
	v, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("resumo"), v)

	// Survives a new instance over the same directory
	v, ok = NewDiskCache(dir, time.Hour).Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("resumo"), v)

	require.NoError(t, c.Delete(key))
	require.NoError(t, c.Delete(key), "deleting a missing entry")
	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestDiskCache_ExpiredEntryIsRemoved(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	require.NoError(t, c.Set("old", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("old")
	assert.False(t, ok)
	_, err := os.Stat(c.path("old"))
	assert.True(t, os.IsNotExist(err))
}

func TestDiskCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{nope"), 0644))

	_, ok := c.Get("bad")
	assert.False(t, ok)
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	writer := NewLayeredCache(time.Hour, dir, time.Hour)
	require.NoError(t, writer.Set("k", []byte("v"), 0))

	reader := NewLayeredCache(time.Hour, dir, time.Hour)
	v, ok := reader.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	// Now served from memory even after the disk entry is gone
	require.NoError(t, reader.disk.Delete("k"))
	v, ok = reader.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestNew(t *testing.T) {
	assert.Nil(t, New(model.CacheConfig{Enabled: false}))

	_, isMem := New(model.CacheConfig{Enabled: true, MemoryTTL: time.Hour}).(*MemoryCache)
	assert.True(t, isMem)

	_, isLayered := New(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache)
	assert.True(t, isLayered)
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Minute)
	type payload struct {
		Text string `json:"text"`
	}

	require.NoError(t, SetJSON(c, "p", payload{Text: "ok"}, 0))
	var got payload
	require.True(t, GetJSON(c, "p", &got))
	assert.Equal(t, "ok", got.Text)

	require.NoError(t, c.Set("broken", []byte("{"), 0))
	assert.False(t, GetJSON(c, "broken", &got))

	assert.False(t, GetJSON(nil, "p", &got))
	assert.NoError(t, SetJSON(nil, "p", got, 0))
}
