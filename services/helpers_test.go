package services

import (
	"context"
	"sync"
	"testing"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	passwordCost = bcrypt.MinCost
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

type fixture struct {
	records     *Records
	events      *recorder
	directory   *DirectoryService
	connections *ConnectionService
	chat        *ChatService
	reviews     *ReviewService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	records := NewRecords(store.NewMemoryBackend())
	events := &recorder{}
	return &fixture{
		records:     records,
		events:      events,
		directory:   NewDirectoryService(records),
		connections: NewConnectionService(records, events),
		chat:        NewChatService(records, events),
		reviews:     NewReviewService(records, events),
	}
}

func (f *fixture) student(t *testing.T, email string) Actor {
	t.Helper()
	u, err := f.directory.CreateUser(context.Background(), RegisterInput{
		FirstName: "Liu",
		LastName:  "Wang",
		Email:     email,
		Password:  "student123",
		Profile:   models.StudentProfile{Career: "Ingeniería de Sistemas", SubjectOfInterest: "Programación"},
	})
	require.NoError(t, err)
	return Actor{ID: u.ID, Role: u.Role}
}

func (f *fixture) tutor(t *testing.T, email string) Actor {
	t.Helper()
	u, err := f.directory.CreateUser(context.Background(), RegisterInput{
		FirstName: "Ana",
		LastName:  "García",
		Email:     email,
		Password:  "tutor123",
		Profile: models.TutorProfile{
			TutorType: models.TutorTypeUnet,
			Subjects:  []models.Subject{{Name: "Programación I", PricePerHour: 15}},
		},
	})
	require.NoError(t, err)
	return Actor{ID: u.ID, Role: u.Role}
}

// accepted returns an accepted connection between a fresh student and tutor.
func (f *fixture) accepted(t *testing.T) (Actor, Actor, models.Connection) {
	t.Helper()
	ctx := context.Background()
	s := f.student(t, "s@unet.edu.ve")
	tu := f.tutor(t, "t@unet.edu.ve")
	conn, err := f.connections.Request(ctx, s, tu.ID)
	require.NoError(t, err)
	conn, err = f.connections.Accept(ctx, tu, conn.ID)
	require.NoError(t, err)
	return s, tu, conn
}
