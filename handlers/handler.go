package handlers

import (
	"errors"
	"time"

	config "github.com/anjiri1684/tutor_connect/configs"
	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/anjiri1684/tutor_connect/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handler serves the HTTP API on top of the core services.
type Handler struct {
	Config      *config.AppConfig
	Directory   *services.DirectoryService
	Connections *services.ConnectionService
	Chat        *services.ChatService
	Reviews     *services.ReviewService
	Hub         *websocket.Hub
}

func New(cfg *config.AppConfig, records *services.Records, publisher services.Publisher, hub *websocket.Hub) *Handler {
	return &Handler{
		Config:      cfg,
		Directory:   services.NewDirectoryService(records),
		Connections: services.NewConnectionService(records, publisher),
		Chat:        services.NewChatService(records, publisher),
		Reviews:     services.NewReviewService(records, publisher),
		Hub:         hub,
	}
}

func badJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON", "kind": "validation"})
}

func invalidRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Invalid request",
		"kind":   "validation",
		"fields": fieldErrors(err),
	})
}

// errorStatus maps a core error to its HTTP status and stable kind.
func errorStatus(err error) (int, string) {
	switch {
	case services.IsValidation(err):
		return fiber.StatusBadRequest, "validation"
	case errors.Is(err, services.ErrCodeMismatch):
		return fiber.StatusBadRequest, "code_mismatch"
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, services.ErrConnectionNotAccepted):
		return fiber.StatusForbidden, "not_accepted"
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrDuplicateRequest):
		return fiber.StatusConflict, "duplicate_request"
	case errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusConflict, "invalid_transition"
	case errors.Is(err, services.ErrDuplicateReview):
		return fiber.StatusConflict, "duplicate_review"
	case errors.Is(err, services.ErrEmailExists):
		return fiber.StatusConflict, "email_exists"
	default:
		return fiber.StatusInternalServerError, "internal"
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status, kind := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("🔥 request failed")
		msg = "Internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg, "kind": kind})
}

type UserResponse struct {
	ID        string      `json:"id"`
	IDCard    string      `json:"idCard"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	Img       string      `json:"img,omitempty"`
	Gender    string      `json:"genero,omitempty"`
	BirthDate string      `json:"date,omitempty"`

	Career            string `json:"career,omitempty"`
	SubjectOfInterest string `json:"subjectOfInterest,omitempty"`

	TutorType     models.TutorType `json:"tutorType,omitempty"`
	Subjects      []models.Subject `json:"subjects,omitempty"`
	AverageRating *float64         `json:"average_rating,omitempty"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		IDCard:            u.IDCard,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		Role:              u.Role,
		CreatedAt:         u.CreatedAt,
		Img:               u.Img,
		Gender:            u.Gender,
		BirthDate:         u.BirthDate,
		Career:            u.Career,
		SubjectOfInterest: u.SubjectOfInterest,
		TutorType:         u.TutorType,
		Subjects:          u.Subjects,
	}
}

func toUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

// withRating attaches the tutor's average rating; tutors without reviews get 0.
func withRating(resp UserResponse, ratings map[string]float64) UserResponse {
	r := ratings[resp.ID]
	resp.AverageRating = &r
	return resp
}
