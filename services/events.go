package services

import (
	"sync"
	"time"

	"github.com/anjiri1684/tutor_connect/models"
)

type EventKind string

const (
	EventConnectionRequested EventKind = "connection.requested"
	EventConnectionAccepted  EventKind = "connection.accepted"
	EventConnectionRejected  EventKind = "connection.rejected"
	EventMessageAppended     EventKind = "message.appended"
	EventReviewSubmitted     EventKind = "review.submitted"
)

type Event struct {
	Kind       EventKind           `json:"kind"`
	Connection models.Connection   `json:"connection"`
	Message    *models.ChatMessage `json:"message,omitempty"`
	Review     *models.Review      `json:"review,omitempty"`
	At         time.Time           `json:"at"`
}

type Publisher interface {
	Publish(Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// Broker delivers every published event to all subscribers, in
// subscription order, on the publishing goroutine. Subscribers must not block.
type Broker struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewBroker() *Broker {
	return &Broker{}
}

func (b *Broker) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}
