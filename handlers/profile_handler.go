package handlers

import (
	"github.com/anjiri1684/tutor_connect/middleware"
	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	IDCard    *string `json:"idCard"`
	FirstName *string `json:"firstName" validate:"omitempty,notblank"`
	LastName  *string `json:"lastName" validate:"omitempty,notblank"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Img       *string `json:"img"`
	Gender    *string `json:"genero"`
	BirthDate *string `json:"date"`

	Career            *string `json:"career"`
	SubjectOfInterest *string `json:"subjectOfInterest"`

	TutorType *models.TutorType `json:"tutorType" validate:"omitempty,oneof=unet private"`
	Subjects  []SubjectRequest  `json:"subjects" validate:"omitempty,dive"`
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	user, err := h.Directory.GetUserByID(c.UserContext(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponse(user))
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	if err := validate.Struct(req); err != nil {
		return invalidRequest(c, err)
	}

	upd := services.ProfileUpdate{
		IDCard:            req.IDCard,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Img:               req.Img,
		Gender:            req.Gender,
		BirthDate:         req.BirthDate,
		Career:            req.Career,
		SubjectOfInterest: req.SubjectOfInterest,
		TutorType:         req.TutorType,
	}
	if req.Subjects != nil {
		upd.Subjects = toSubjects(req.Subjects)
	}

	user, err := h.Directory.UpdateUser(c.UserContext(), actor.ID, upd)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponse(user))
}
