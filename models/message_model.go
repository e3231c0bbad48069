package models

import "time"

type ChatMessage struct {
	ID           string    `json:"id"`
	ConnectionID string    `json:"connectionId"`
	SenderID     string    `json:"senderId"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
}
