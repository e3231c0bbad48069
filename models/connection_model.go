package models

import "time"

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

type Connection struct {
	ID         string           `json:"id"`
	StudentID  string           `json:"studentId"`
	TutorID    string           `json:"tutorId"`
	Status     ConnectionStatus `json:"status"`
	ReviewCode string           `json:"reviewCode"`
	CreatedAt  time.Time        `json:"createdAt"`
	AcceptedAt *time.Time       `json:"acceptedAt,omitempty"`
}

func (c Connection) HasParticipant(userID string) bool {
	return userID != "" && (c.StudentID == userID || c.TutorID == userID)
}

// Counterpart returns the id of the other participant.
func (c Connection) Counterpart(userID string) string {
	if c.StudentID == userID {
		return c.TutorID
	}
	return c.StudentID
}
