package models

// Chat is the message log of one connection.
type Chat struct {
	ConnectionID string        `json:"connectionId"`
	Messages     []ChatMessage `json:"messages"`
	LastMessage  *ChatMessage  `json:"lastMessage,omitempty"`
}
