package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemory_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", entry{Name: "a", Count: 1}, time.Minute))

	var got entry
	require.NoError(t, m.Get(ctx, "k", &got))
	assert.Equal(t, entry{Name: "a", Count: 1}, got)
	assert.True(t, m.Exists(ctx, "k"))

	now = now.Add(time.Minute)
	assert.ErrorIs(t, m.Get(ctx, "k", &got), ErrCacheMiss)
	assert.False(t, m.Exists(ctx, "k"))
}

func TestMemory_TakeIsOneShot(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "flash", entry{Name: "once"}, 0))

	var got entry
	require.NoError(t, m.Take(ctx, "flash", &got))
	assert.Equal(t, "once", got.Name)
	assert.ErrorIs(t, m.Take(ctx, "flash", &got), ErrCacheMiss)
}

func TestMemory_GetOrSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return entry{Name: "fetched", Count: calls}, nil
	}

	var first, second entry
	require.NoError(t, m.GetOrSet(ctx, "k", time.Minute, fetch, &first))
	require.NoError(t, m.GetOrSet(ctx, "k", time.Minute, fetch, &second))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	require.NoError(t, m.Delete(ctx, "k"))
	require.NoError(t, m.GetOrSet(ctx, "k", time.Minute, fetch, &second))
	assert.Equal(t, 2, second.Count)
}

func TestMemory_GetOrSetFetcherError(t *testing.T) {
	sentinel := errors.New("boom")
	m := NewMemory()

	var got entry
	err := m.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) { return nil, sentinel }, &got)
	assert.ErrorIs(t, err, sentinel)
	assert.False(t, m.Exists(context.Background(), "k"))
}
