package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/store"
	"github.com/google/uuid"
)

// ChatService is the append-only message log attached to each connection.
// Readers poll Read; pushes are delivered through the publisher.
type ChatService struct {
	records   *Records
	publisher Publisher
	now       func() time.Time
}

func NewChatService(records *Records, publisher Publisher) *ChatService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &ChatService{records: records, publisher: publisher, now: time.Now}
}

func (s *ChatService) participantConnection(ctx context.Context, actor Actor, connectionID string) (models.Connection, error) {
	if actor.ID == "" {
		return models.Connection{}, forbidden("authentication required")
	}
	conn, err := s.records.Connections.Get(ctx, connectionID)
	if err != nil {
		return models.Connection{}, translate(err, "connection")
	}
	if !conn.HasParticipant(actor.ID) {
		return models.Connection{}, forbidden("not a participant of this connection")
	}
	return conn, nil
}

func (s *ChatService) Send(ctx context.Context, actor Actor, connectionID, text string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, invalid("message", "must not be empty")
	}
	conn, err := s.participantConnection(ctx, actor, connectionID)
	if err != nil {
		return models.ChatMessage{}, err
	}

	// connectionID may alias the request buffer; conn.ID is owned.
	msg := models.ChatMessage{
		ID:           uuid.NewString(),
		ConnectionID: conn.ID,
		SenderID:     actor.ID,
		Message:      text,
		Timestamp:    s.now().UTC(),
	}

	err = s.records.Chats.Mutate(ctx, func(chats []models.Chat) ([]models.Chat, error) {
		for i := range chats {
			if chats[i].ConnectionID == conn.ID {
				chats[i].Messages = append(chats[i].Messages, msg)
				chats[i].LastMessage = &msg
				return chats, nil
			}
		}
		return append(chats, models.Chat{
			ConnectionID: conn.ID,
			Messages:     []models.ChatMessage{msg},
			LastMessage:  &msg,
		}), nil
	})
	if err != nil {
		return models.ChatMessage{}, err
	}

	s.publisher.Publish(Event{Kind: EventMessageAppended, Connection: conn, Message: &msg, At: msg.Timestamp})
	return msg, nil
}

// Read returns the connection's messages oldest first. When afterID names a
// message of this chat only the messages appended after it are returned.
func (s *ChatService) Read(ctx context.Context, actor Actor, connectionID, afterID string) ([]models.ChatMessage, error) {
	if _, err := s.participantConnection(ctx, actor, connectionID); err != nil {
		return nil, err
	}

	chat, err := s.records.Chats.Get(ctx, connectionID)
	if errors.Is(err, store.ErrNotFound) {
		return []models.ChatMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	msgs := chat.Messages
	if afterID != "" {
		for i, m := range msgs {
			if m.ID == afterID {
				msgs = msgs[i+1:]
				break
			}
		}
	}
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

// LastMessage returns the most recent message of the chat, or nil.
func (s *ChatService) LastMessage(ctx context.Context, connectionID string) (*models.ChatMessage, error) {
	chat, err := s.records.Chats.Get(ctx, connectionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return chat.LastMessage, nil
}

type DateGroup struct {
	Date     string               `json:"date"`
	Messages []models.ChatMessage `json:"messages"`
}

// GroupByDate buckets messages by calendar date in loc. Buckets appear in
// order of their first message and keep the input order inside each bucket.
func GroupByDate(msgs []models.ChatMessage, loc *time.Location) []DateGroup {
	if loc == nil {
		loc = time.UTC
	}
	groups := []DateGroup{}
	index := map[string]int{}
	for _, m := range msgs {
		day := m.Timestamp.In(loc).Format(time.DateOnly)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DateGroup{Date: day})
		}
		groups[i].Messages = append(groups[i].Messages, m)
	}
	return groups
}
