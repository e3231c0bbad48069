package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

func newItems() *Collection[item] {
	return NewCollection(NewMemoryBackend(), "items", func(i item) string { return i.ID })
}

func TestCollection_EmptyReadsAsEmptySlice(t *testing.T) {
	items, err := newItems().All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCollection_AppendKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c := newItems()
	for i := 1; i <= 3; i++ {
		require.NoError(t, c.Append(ctx, item{ID: fmt.Sprint(i), Value: i}))
	}

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{"1", 1}, {"2", 2}, {"3", 3}}, all)
}

func TestCollection_FindAndGet(t *testing.T) {
	ctx := context.Background()
	c := newItems()
	require.NoError(t, c.Append(ctx, item{ID: "a", Value: 10}))
	require.NoError(t, c.Append(ctx, item{ID: "b", Value: 20}))

	got, err := c.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Value)

	_, err = c.Get(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)

	big, err := c.Filter(ctx, func(i item) bool { return i.Value > 5 })
	require.NoError(t, err)
	assert.Len(t, big, 2)
}

func TestCollection_Update(t *testing.T) {
	ctx := context.Background()
	c := newItems()
	require.NoError(t, c.Append(ctx, item{ID: "a", Value: 1}))

	updated, err := c.Update(ctx, "a", func(i *item) error {
		i.Value = 99
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 99, updated.Value)

	stored, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 99, stored.Value)

	_, err = c.Update(ctx, "missing", func(*item) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCollection_FailedMutationWritesNothing(t *testing.T) {
	ctx := context.Background()
	c := newItems()
	require.NoError(t, c.Append(ctx, item{ID: "a", Value: 1}))

	boom := errors.New("boom")
	_, err := c.Update(ctx, "a", func(i *item) error {
		i.Value = 2
		return boom
	})
	assert.Equal(t, boom, err)

	stored, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Value)
}

func TestCollection_ConcurrentAppendsAreNotLost(t *testing.T) {
	ctx := context.Background()
	c := newItems()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, c.Append(ctx, item{ID: fmt.Sprint(i), Value: i}))
		}(i)
	}
	wg.Wait()

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

func TestMemoryBackend_ReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	require.NoError(t, m.Update(ctx, "k", func([]byte) ([]byte, error) { return []byte("[1]"), nil }))

	data, err := m.Read(ctx, "k")
	require.NoError(t, err)
	data[0] = 'x'

	again, err := m.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(again))
}
