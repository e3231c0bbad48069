package models

import "time"

type Review struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"studentId"`
	TutorID      string    `json:"tutorId"`
	ConnectionID string    `json:"connectionId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	ReviewCode   string    `json:"reviewCode"`
	CreatedAt    time.Time `json:"createdAt"`
}
