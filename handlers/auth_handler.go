package handlers

import (
	"time"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
)

type SubjectRequest struct {
	Name         string  `json:"name" validate:"required,notblank"`
	PricePerHour float64 `json:"pricePerHour" validate:"gte=0"`
}

type RegisterRequest struct {
	IDCard    string      `json:"idCard"`
	FirstName string      `json:"firstName" validate:"required,notblank"`
	LastName  string      `json:"lastName" validate:"required,notblank"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,min=6"`
	Role      models.Role `json:"role" validate:"required,oneof=student tutor"`
	Img       string      `json:"img"`
	Gender    string      `json:"genero"`
	BirthDate string      `json:"date"`

	Career            string `json:"career"`
	SubjectOfInterest string `json:"subjectOfInterest"`

	TutorType models.TutorType `json:"tutorType" validate:"omitempty,oneof=unet private"`
	Subjects  []SubjectRequest `json:"subjects" validate:"dive"`
}

func toSubjects(in []SubjectRequest) []models.Subject {
	out := make([]models.Subject, len(in))
	for i, s := range in {
		out[i] = models.Subject{Name: s.Name, PricePerHour: s.PricePerHour}
	}
	return out
}

func (r RegisterRequest) profile() models.Profile {
	switch r.Role {
	case models.RoleStudent:
		return models.StudentProfile{Career: r.Career, SubjectOfInterest: r.SubjectOfInterest}
	case models.RoleTutor:
		return models.TutorProfile{TutorType: r.TutorType, Subjects: toSubjects(r.Subjects)}
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	if err := validate.Struct(req); err != nil {
		return invalidRequest(c, err)
	}

	user, err := h.Directory.CreateUser(c.UserContext(), services.RegisterInput{
		IDCard:    req.IDCard,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Img:       req.Img,
		Gender:    req.Gender,
		BirthDate: req.BirthDate,
		Profile:   req.profile(),
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("✅ user registered")
	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

func (h *Handler) LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	if err := validate.Struct(req); err != nil {
		return invalidRequest(c, err)
	}

	user, err := h.Directory.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	t, err := h.signToken(user)
	if err != nil {
		log.Error().Err(err).Msg("🔥 failed to sign token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token", "kind": "internal"})
	}

	return c.JSON(fiber.Map{"token": t, "user": toUserResponse(user)})
}

func (h *Handler) signToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     time.Now().Add(h.Config.JWTTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.Config.JWTSecret))
}
