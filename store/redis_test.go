package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBackend(t *testing.T) (*RedisBackend, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBackend(client), client
}

func TestRedisBackend_ReadMissingKey(t *testing.T) {
	b, _ := newRedisBackend(t)
	data, err := b.Read(context.Background(), "items")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisBackend_ConcurrentAppendsAreNotLost(t *testing.T) {
	ctx := context.Background()
	b, _ := newRedisBackend(t)
	c := NewCollection(b, "items", func(i item) string { return i.ID })

	const writers = 30
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := c.Append(ctx, item{ID: fmt.Sprint(i), Value: i})
			if err != nil {
				assert.ErrorIs(t, err, ErrTooMuchContention)
				return
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, succeeded)
	assert.Positive(t, succeeded)
}

func TestRedisBackend_FailedUpdateWritesNothing(t *testing.T) {
	ctx := context.Background()
	b, _ := newRedisBackend(t)
	c := NewCollection(b, "items", func(i item) string { return i.ID })
	require.NoError(t, c.Append(ctx, item{ID: "a", Value: 1}))

	boom := errors.New("boom")
	err := c.Mutate(ctx, func(items []item) ([]item, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = c.Update(ctx, "missing", func(*item) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{"a", 1}}, all)
}

func TestRedisBackend_RetriesWhenKeyChangesUnderneath(t *testing.T) {
	ctx := context.Background()
	b, other := newRedisBackend(t)
	require.NoError(t, other.Set(ctx, "items", `[{"id":"a","value":1}]`, 0).Err())

	calls := 0
	err := b.Update(ctx, "items", func(current []byte) ([]byte, error) {
		calls++
		if calls == 1 {
			require.NoError(t, other.Set(ctx, "items", `[{"id":"b","value":2}]`, 0).Err())
		}
		return append([]byte(nil), current...), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	data, err := b.Read(ctx, "items")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"b","value":2}]`, string(data))
}

func TestRedisBackend_GivesUpUnderConstantContention(t *testing.T) {
	ctx := context.Background()
	b, other := newRedisBackend(t)

	calls := 0
	err := b.Update(ctx, "items", func([]byte) ([]byte, error) {
		calls++
		require.NoError(t, other.Set(ctx, "items", fmt.Sprintf(`[{"id":"x","value":%d}]`, calls), 0).Err())
		return []byte(`[]`), nil
	})
	assert.ErrorIs(t, err, ErrTooMuchContention)
	assert.Equal(t, maxRedisRetries, calls)

	data, err := b.Read(ctx, "items")
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`[{"id":"x","value":%d}]`, maxRedisRetries), string(data))
}
