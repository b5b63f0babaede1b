package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
}

func TestConfigStore_Set_Success(t *testing.T) {
	store := NewConfigStore()

	err := store.Set("key1", "value1")
	require.NoError(t, err)

	val, ok := store.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "value1", val)
}

func TestConfigStore_Set_Update(t *testing.T) {
	store := NewConfigStore()

	err := store.Set("key1", "original")
	require.NoError(t, err)

	err = store.Set("key1", "updated")
	require.NoError(t, err)

	val, ok := store.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "updated", val)
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := NewConfigStore()

	val, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_GetString(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("string_key", "hello"))
	assert.Equal(t, "hello", store.GetString("string_key"))

	// Missing key
	assert.Equal(t, "", store.GetString("nonexistent"))

	// Wrong type
	require.NoError(t, store.Set("int_key", 42))
	assert.Equal(t, "", store.GetString("int_key"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("int_key", 42))
	assert.Equal(t, 42, store.GetInt("int_key"))

	require.NoError(t, store.Set("int64_key", int64(99)))
	assert.Equal(t, 99, store.GetInt("int64_key"))

	require.NoError(t, store.Set("float_key", 3.9))
	assert.Equal(t, 3, store.GetInt("float_key"))

	assert.Equal(t, 0, store.GetInt("nonexistent"))

	require.NoError(t, store.Set("string_key", "not an int"))
	assert.Equal(t, 0, store.GetInt("string_key"))
}

func TestConfigStore_GetFloat64(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("float_key", 0.7))
	assert.InDelta(t, 0.7, store.GetFloat64("float_key"), 0.00001)

	require.NoError(t, store.Set("int_key", 1))
	assert.InDelta(t, 1.0, store.GetFloat64("int_key"), 0.00001)

	assert.Zero(t, store.GetFloat64("nonexistent"))

	require.NoError(t, store.Set("string_key", "not a float"))
	assert.Zero(t, store.GetFloat64("string_key"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("bool_key", true))
	assert.True(t, store.GetBool("bool_key"))

	require.NoError(t, store.Set("bool_false", false))
	assert.False(t, store.GetBool("bool_false"))

	assert.False(t, store.GetBool("nonexistent"))

	require.NoError(t, store.Set("string_key", "true"))
	assert.False(t, store.GetBool("string_key"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("slice_key", []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("slice_key"))

	// []any with mixed types keeps only strings
	require.NoError(t, store.Set("any_slice", []any{"x", 1, "y"}))
	assert.Equal(t, []string{"x", "y"}, store.GetStringSlice("any_slice"))

	assert.Nil(t, store.GetStringSlice("nonexistent"))

	require.NoError(t, store.Set("string_key", "not a slice"))
	assert.Nil(t, store.GetStringSlice("string_key"))
}

func TestConfigStore_SaveAndLoad_NoOps(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("key", "value"))
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())

	// Values survive the no-op load
	assert.Equal(t, "value", store.GetString("key"))
}

func TestConfigStore_Path(t *testing.T) {
	store := NewConfigStore()
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_ = store.GetFloat64(key)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()
}
