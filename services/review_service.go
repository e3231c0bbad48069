package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ReviewService lets the student of an accepted connection leave exactly one
// review, unlocked by the connection's review code.
type ReviewService struct {
	records   *Records
	publisher Publisher
	now       func() time.Time
}

func NewReviewService(records *Records, publisher Publisher) *ReviewService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &ReviewService{records: records, publisher: publisher, now: time.Now}
}

type ReviewInput struct {
	Rating  int
	Comment string
	Code    string
}

func (s *ReviewService) Submit(ctx context.Context, actor Actor, connectionID string, in ReviewInput) (models.Review, error) {
	if _, err := s.GetForConnection(ctx, connectionID); err == nil {
		return models.Review{}, ErrDuplicateReview
	} else if !errors.Is(err, ErrNotFound) {
		return models.Review{}, err
	}

	if in.Rating < MinRating || in.Rating > MaxRating {
		return models.Review{}, invalid("rating", "must be between 1 and 5")
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return models.Review{}, invalid("comment", "must not be empty")
	}

	conn, err := s.records.Connections.Get(ctx, connectionID)
	if err != nil {
		return models.Review{}, translate(err, "connection")
	}
	// Case is ignored; surrounding whitespace is not.
	if strings.ToUpper(in.Code) != conn.ReviewCode {
		return models.Review{}, ErrCodeMismatch
	}
	if actor.ID == "" || actor.ID != conn.StudentID {
		return models.Review{}, forbidden("only the student of this connection can review it")
	}
	if conn.Status != models.ConnectionAccepted {
		return models.Review{}, ErrConnectionNotAccepted
	}

	review := models.Review{
		ID:           uuid.NewString(),
		StudentID:    actor.ID,
		TutorID:      conn.TutorID,
		ConnectionID: conn.ID,
		Rating:       in.Rating,
		Comment:      comment,
		ReviewCode:   conn.ReviewCode,
		CreatedAt:    s.now().UTC(),
	}

	err = s.records.Reviews.Mutate(ctx, func(reviews []models.Review) ([]models.Review, error) {
		for _, r := range reviews {
			if r.ConnectionID == conn.ID {
				return nil, ErrDuplicateReview
			}
		}
		return append(reviews, review), nil
	})
	if err != nil {
		return models.Review{}, err
	}

	log.Info().Str("review_id", review.ID).Str("tutor_id", review.TutorID).Int("rating", review.Rating).
		Msg("review submitted")
	s.publisher.Publish(Event{Kind: EventReviewSubmitted, Connection: conn, Review: &review, At: review.CreatedAt})
	return review, nil
}

func (s *ReviewService) GetForConnection(ctx context.Context, connectionID string) (models.Review, error) {
	review, err := s.records.Reviews.Find(ctx, func(r models.Review) bool { return r.ConnectionID == connectionID })
	return review, translate(err, "review")
}

// ForTutor lists a tutor's reviews, newest first.
func (s *ReviewService) ForTutor(ctx context.Context, tutorID string) ([]models.Review, error) {
	reviews, err := s.records.Reviews.Filter(ctx, func(r models.Review) bool { return r.TutorID == tutorID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}

func (s *ReviewService) AverageRating(ctx context.Context, tutorID string) (float64, error) {
	reviews, err := s.ForTutor(ctx, tutorID)
	if err != nil {
		return 0, err
	}
	return AverageRating(reviews), nil
}

// AverageRatings computes the mean rating of every tutor in one read.
func (s *ReviewService) AverageRatings(ctx context.Context) (map[string]float64, error) {
	reviews, err := s.records.Reviews.All(ctx)
	if err != nil {
		return nil, err
	}
	byTutor := map[string][]models.Review{}
	for _, r := range reviews {
		byTutor[r.TutorID] = append(byTutor[r.TutorID], r)
	}
	out := make(map[string]float64, len(byTutor))
	for id, rs := range byTutor {
		out[id] = AverageRating(rs)
	}
	return out, nil
}

// AverageRating is the mean rating rounded to one decimal, 0 when empty.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return math.Round(float64(total)/float64(len(reviews))*10) / 10
}
