package handlers

import (
	"fmt"

	"github.com/anjiri1684/tutor_connect/middleware"
	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) tutorsWithRatings(c *fiber.Ctx, tutors []models.User) error {
	ratings, err := h.Reviews.AverageRatings(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]UserResponse, len(tutors))
	for i, t := range tutors {
		out[i] = withRating(toUserResponse(t), ratings)
	}
	return c.JSON(out)
}

// ListTutors supports ?search=, ?subject= and ?tutorType= filters.
func (h *Handler) ListTutors(c *fiber.Ctx) error {
	tutors, err := h.Directory.ListTutors(c.UserContext(), services.TutorFilter{
		Search:    c.Query("search"),
		Subject:   c.Query("subject"),
		TutorType: models.TutorType(c.Query("tutorType")),
	})
	if err != nil {
		return respondError(c, err)
	}
	return h.tutorsWithRatings(c, tutors)
}

// RecommendedTutors lists tutors teaching the calling student's subject of interest.
func (h *Handler) RecommendedTutors(c *fiber.Ctx) error {
	me, err := h.Directory.GetUserByID(c.UserContext(), middleware.CurrentActor(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	tutors, err := h.Directory.RelevantTutors(c.UserContext(), me)
	if err != nil {
		return respondError(c, err)
	}
	return h.tutorsWithRatings(c, tutors)
}

func (h *Handler) getTutor(c *fiber.Ctx) (models.User, error) {
	user, err := h.Directory.GetUserByID(c.UserContext(), c.Params("tutorId"))
	if err != nil {
		return models.User{}, err
	}
	if user.Role != models.RoleTutor {
		return models.User{}, fmt.Errorf("tutor %w", services.ErrNotFound)
	}
	return user, nil
}

func (h *Handler) GetTutor(c *fiber.Ctx) error {
	tutor, err := h.getTutor(c)
	if err != nil {
		return respondError(c, err)
	}
	avg, err := h.Reviews.AverageRating(c.UserContext(), tutor.ID)
	if err != nil {
		return respondError(c, err)
	}
	resp := toUserResponse(tutor)
	resp.AverageRating = &avg
	return c.JSON(resp)
}

func (h *Handler) GetTutorReviews(c *fiber.Ctx) error {
	tutor, err := h.getTutor(c)
	if err != nil {
		return respondError(c, err)
	}
	reviews, err := h.Reviews.ForTutor(c.UserContext(), tutor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reviews)
}

func (h *Handler) GetTutorRating(c *fiber.Ctx) error {
	tutor, err := h.getTutor(c)
	if err != nil {
		return respondError(c, err)
	}
	reviews, err := h.Reviews.ForTutor(c.UserContext(), tutor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"tutor_id":       tutor.ID,
		"average_rating": services.AverageRating(reviews),
		"review_count":   len(reviews),
	})
}

// ListStudents is the tutor-side directory. ?potential=true restricts it to
// students whose subject of interest matches one of the caller's subjects.
func (h *Handler) ListStudents(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		students []models.User
		err      error
	)
	if c.QueryBool("potential") {
		var me models.User
		me, err = h.Directory.GetUserByID(ctx, middleware.CurrentActor(c).ID)
		if err != nil {
			return respondError(c, err)
		}
		students, err = h.Directory.PotentialStudents(ctx, me)
	} else {
		students, err = h.Directory.ListStudents(ctx, services.StudentFilter{
			Search:  c.Query("search"),
			Subject: c.Query("subject"),
			Career:  c.Query("career"),
		})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponses(students))
}
