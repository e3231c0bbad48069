package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ConnectionService runs the student/tutor connection state machine:
// pending -> accepted | rejected, both terminal.
type ConnectionService struct {
	records   *Records
	publisher Publisher
	now       func() time.Time
	newCode   func() string
}

func NewConnectionService(records *Records, publisher Publisher) *ConnectionService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &ConnectionService{
		records:   records,
		publisher: publisher,
		now:       time.Now,
		newCode:   utils.GenerateReviewCode,
	}
}

func (s *ConnectionService) Request(ctx context.Context, actor Actor, tutorID string) (models.Connection, error) {
	if !actor.IsStudent() {
		return models.Connection{}, forbidden("only students can request a connection")
	}

	tutor, err := s.records.Users.Get(ctx, tutorID)
	if err != nil {
		return models.Connection{}, translate(err, "tutor")
	}
	if tutor.Role != models.RoleTutor {
		return models.Connection{}, notFound("tutor")
	}

	conn := models.Connection{
		ID:         uuid.NewString(),
		StudentID:  actor.ID,
		TutorID:    tutorID,
		Status:     models.ConnectionPending,
		ReviewCode: s.newCode(),
		CreatedAt:  s.now().UTC(),
	}

	err = s.records.Connections.Mutate(ctx, func(conns []models.Connection) ([]models.Connection, error) {
		for _, c := range conns {
			if c.StudentID == conn.StudentID && c.TutorID == conn.TutorID {
				return nil, ErrDuplicateRequest
			}
		}
		return append(conns, conn), nil
	})
	if err != nil {
		return models.Connection{}, err
	}

	log.Info().Str("connection_id", conn.ID).Str("student_id", conn.StudentID).Str("tutor_id", conn.TutorID).
		Msg("connection requested")
	s.publisher.Publish(Event{Kind: EventConnectionRequested, Connection: conn, At: conn.CreatedAt})
	return conn, nil
}

func (s *ConnectionService) Accept(ctx context.Context, actor Actor, connectionID string) (models.Connection, error) {
	return s.resolve(ctx, actor, connectionID, models.ConnectionAccepted)
}

func (s *ConnectionService) Reject(ctx context.Context, actor Actor, connectionID string) (models.Connection, error) {
	return s.resolve(ctx, actor, connectionID, models.ConnectionRejected)
}

func (s *ConnectionService) resolve(ctx context.Context, actor Actor, connectionID string, to models.ConnectionStatus) (models.Connection, error) {
	if !actor.IsTutor() {
		return models.Connection{}, forbidden("only tutors can answer a connection request")
	}

	now := s.now().UTC()
	conn, err := s.records.Connections.Update(ctx, connectionID, func(c *models.Connection) error {
		if c.TutorID != actor.ID {
			return forbidden("connection belongs to another tutor")
		}
		if c.Status != models.ConnectionPending {
			return fmt.Errorf("%w (status %s)", ErrInvalidTransition, c.Status)
		}
		c.Status = to
		if to == models.ConnectionAccepted {
			c.AcceptedAt = &now
		}
		return nil
	})
	if err != nil {
		return models.Connection{}, translate(err, "connection")
	}

	kind := EventConnectionRejected
	if to == models.ConnectionAccepted {
		kind = EventConnectionAccepted
	}
	log.Info().Str("connection_id", conn.ID).Str("status", string(conn.Status)).Msg("connection answered")
	s.publisher.Publish(Event{Kind: kind, Connection: conn, At: now})
	return conn, nil
}

func (s *ConnectionService) Get(ctx context.Context, connectionID string) (models.Connection, error) {
	conn, err := s.records.Connections.Get(ctx, connectionID)
	return conn, translate(err, "connection")
}

// StatusBetween returns the connection for the exact (student, tutor) pair.
func (s *ConnectionService) StatusBetween(ctx context.Context, studentID, tutorID string) (models.Connection, error) {
	conn, err := s.records.Connections.Find(ctx, func(c models.Connection) bool {
		return c.StudentID == studentID && c.TutorID == tutorID
	})
	return conn, translate(err, "connection")
}

// AllForUser lists every connection the user is part of, newest first. An
// empty status matches all.
func (s *ConnectionService) AllForUser(ctx context.Context, userID string, status models.ConnectionStatus) ([]models.Connection, error) {
	conns, err := s.records.Connections.Filter(ctx, func(c models.Connection) bool {
		return c.HasParticipant(userID) && (status == "" || c.Status == status)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(conns, func(i, j int) bool { return conns[i].CreatedAt.After(conns[j].CreatedAt) })
	return conns, nil
}

// PendingCreatedBetween is used by the reminder job.
func (s *ConnectionService) PendingCreatedBetween(ctx context.Context, from, to time.Time) ([]models.Connection, error) {
	return s.records.Connections.Filter(ctx, func(c models.Connection) bool {
		return c.Status == models.ConnectionPending && !c.CreatedAt.Before(from) && c.CreatedAt.Before(to)
	})
}

type Parties struct {
	Student        models.User
	StudentProfile models.StudentProfile
	Tutor          models.User
	TutorProfile   models.TutorProfile
}

// Parties resolves both sides of a connection to their profile variants.
func (s *ConnectionService) Parties(ctx context.Context, conn models.Connection) (Parties, error) {
	var p Parties
	for _, id := range []string{conn.StudentID, conn.TutorID} {
		user, err := s.records.Users.Get(ctx, id)
		if err != nil {
			return Parties{}, translate(err, "user")
		}
		profile, err := user.Profile()
		if err != nil {
			return Parties{}, err
		}
		switch prof := profile.(type) {
		case models.StudentProfile:
			p.Student, p.StudentProfile = user, prof
		case models.TutorProfile:
			p.Tutor, p.TutorProfile = user, prof
		}
	}
	if p.Student.ID != conn.StudentID || p.Tutor.ID != conn.TutorID {
		return Parties{}, fmt.Errorf("connection %s has mismatched party roles", conn.ID)
	}
	return p, nil
}
