package websocket

import (
	"context"
	"sync"

	"github.com/anjiri1684/tutor_connect/services"
	"github.com/rs/zerolog/log"
)

const (
	eventBuffer = 256
	sendBuffer  = 16
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one authenticated socket. All frames for it go through a small
// queue drained by its own writer, so a slow socket never stalls the hub.
type Client struct {
	UserID string
	conn   Conn
	send   chan interface{}

	mu     sync.Mutex
	closed bool
}

func NewClient(userID string, conn Conn) *Client {
	c := &Client{UserID: userID, conn: conn, send: make(chan interface{}, sendBuffer)}
	go c.writeLoop()
	return c
}

// Send queues v for the socket. It reports false when the queue is full or
// the client has been shut down.
func (c *Client) Send(v interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

func (c *Client) writeLoop() {
	for v := range c.send {
		if err := c.conn.WriteJSON(v); err != nil {
			log.Warn().Err(err).Str("user_id", c.UserID).Msg("error writing to websocket client")
			c.conn.Close()
			// keep draining until the hub lets go of the client
			for range c.send {
			}
			return
		}
	}
}

// shutdown stops the writer and closes the socket, which ends the read loop
// serving it.
func (c *Client) shutdown() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	c.conn.Close()
}

// Hub pushes core events to the sockets of the users they concern.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	events     chan services.Event
	done       chan struct{}
	clients    map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan services.Event, eventBuffer),
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]struct{}),
	}
}

// Register adds c to the hub. Once Run has returned the client is shut down
// instead.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.shutdown()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.shutdown()
	}
}

// Publish queues e for delivery. It never blocks the publisher; when the
// queue is full the event is dropped and clients fall back to polling.
func (h *Hub) Publish(e services.Event) {
	select {
	case h.events <- e:
	default:
		log.Warn().Str("kind", string(e.Kind)).Str("connection_id", e.Connection.ID).Msg("⚠️ websocket queue full, event dropped")
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					c.shutdown()
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			return
		case c := <-h.register:
			log.Debug().Str("user_id", c.UserID).Msg("websocket client registered")
			set, ok := h.clients[c.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.UserID] = set
			}
			set[c] = struct{}{}
		case c := <-h.unregister:
			log.Debug().Str("user_id", c.UserID).Msg("websocket client unregistered")
			h.remove(c)
		case e := <-h.events:
			for _, userID := range recipients(e) {
				for c := range h.clients[userID] {
					if !c.Send(e) {
						log.Warn().Str("user_id", userID).Str("kind", string(e.Kind)).
							Msg("⚠️ websocket client too slow, disconnecting")
						h.remove(c)
					}
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	c.shutdown()
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
}

// recipients lists the users an event is pushed to. The user who caused the
// event is never included.
func recipients(e services.Event) []string {
	conn := e.Connection
	switch e.Kind {
	case services.EventConnectionRequested, services.EventReviewSubmitted:
		return []string{conn.TutorID}
	case services.EventConnectionAccepted, services.EventConnectionRejected:
		return []string{conn.StudentID}
	case services.EventMessageAppended:
		if e.Message == nil {
			return nil
		}
		return []string{conn.Counterpart(e.Message.SenderID)}
	}
	return nil
}
