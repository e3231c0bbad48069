package services

import (
	"errors"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/store"
)

// Records groups the four persisted collections.
type Records struct {
	Users       *store.Collection[models.User]
	Connections *store.Collection[models.Connection]
	Chats       *store.Collection[models.Chat]
	Reviews     *store.Collection[models.Review]
}

func NewRecords(backend store.Backend) *Records {
	return &Records{
		Users:       store.NewCollection(backend, store.UsersKey, func(u models.User) string { return u.ID }),
		Connections: store.NewCollection(backend, store.ConnectionsKey, func(c models.Connection) string { return c.ID }),
		Chats:       store.NewCollection(backend, store.ChatsKey, func(c models.Chat) string { return c.ConnectionID }),
		Reviews:     store.NewCollection(backend, store.ReviewsKey, func(r models.Review) string { return r.ID }),
	}
}

// translate maps store.ErrNotFound to the service error for what.
func translate(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(what)
	}
	return err
}
