package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Collection is a typed view over one backend key holding a JSON array.
type Collection[T any] struct {
	backend Backend
	key     string
	idOf    func(T) string
}

func NewCollection[T any](backend Backend, key string, idOf func(T) string) *Collection[T] {
	return &Collection[T]{backend: backend, key: key, idOf: idOf}
}

func (c *Collection[T]) decode(data []byte) ([]T, error) {
	if len(data) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", c.key)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	data, err := c.backend.Read(ctx, c.key)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", c.key)
	}
	return c.decode(data)
}

func (c *Collection[T]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	records, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Find returns the first record matching pred, or ErrNotFound.
func (c *Collection[T]) Find(ctx context.Context, pred func(T) bool) (T, error) {
	var zero T
	records, err := c.All(ctx)
	if err != nil {
		return zero, err
	}
	for _, r := range records {
		if pred(r) {
			return r, nil
		}
	}
	return zero, ErrNotFound
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	return c.Find(ctx, func(r T) bool { return c.idOf(r) == id })
}

// Mutate rewrites the whole collection with the result of fn. Errors from fn
// abort the write and are returned as is.
func (c *Collection[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	var fnErr error
	err := c.backend.Update(ctx, c.key, func(current []byte) ([]byte, error) {
		records, err := c.decode(current)
		if err != nil {
			return nil, err
		}
		next, err := fn(records)
		if err != nil {
			fnErr = err
			return nil, err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s", c.key)
		}
		return data, nil
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return errors.Wrapf(err, "writing %s", c.key)
	}
	return nil
}

func (c *Collection[T]) Append(ctx context.Context, record T) error {
	return c.Mutate(ctx, func(records []T) ([]T, error) {
		return append(records, record), nil
	})
}

// Update applies fn to the record with the given id and returns the stored
// result. ErrNotFound is returned when no record has that id.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var updated T
	err := c.Mutate(ctx, func(records []T) ([]T, error) {
		for i := range records {
			if c.idOf(records[i]) != id {
				continue
			}
			if err := fn(&records[i]); err != nil {
				return nil, err
			}
			updated = records[i]
			return records, nil
		}
		return nil, ErrNotFound
	})
	return updated, err
}
