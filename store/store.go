package store

import (
	"context"
	"errors"
)

// Keys under which each collection is persisted.
const (
	UsersKey       = "unet_users"
	ConnectionsKey = "unet_connections"
	ChatsKey       = "unet_chats"
	ReviewsKey     = "unet_reviews"
)

var AllKeys = []string{UsersKey, ConnectionsKey, ChatsKey, ReviewsKey}

var ErrNotFound = errors.New("record not found")

// Backend persists whole collections as opaque JSON documents.
//
// Read returns nil when the key has never been written. Update must apply
// fn atomically with respect to other Update calls on the same key; when fn
// returns an error nothing is written and that error is returned unchanged.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}
