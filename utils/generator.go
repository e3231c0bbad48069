package utils

import (
	"math/rand"
	"time"
)

const ReviewCodeLength = 6
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReviewCode returns a random uppercase alphanumeric code handed to a
// student once a tutor connection is made.
func GenerateReviewCode() string {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	b := make([]byte, ReviewCodeLength)
	for i := range b {
		b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
	}
	return string(b)
}
