package handlers

import (
	"github.com/anjiri1684/tutor_connect/middleware"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/gofiber/fiber/v2"
)

// Rating and comment are checked by the review gate itself so a repeated
// submission is reported as a duplicate whatever its content.
type SubmitReviewRequest struct {
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	ReviewCode string `json:"reviewCode"`
}

func (h *Handler) SubmitReview(c *fiber.Ctx) error {
	var req SubmitReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	review, err := h.Reviews.Submit(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), services.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
		Code:    req.ReviewCode,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *Handler) GetReview(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	conn, err := h.Connections.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if !conn.HasParticipant(actor.ID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: not a participant of this connection",
			"kind":  "forbidden",
		})
	}

	review, err := h.Reviews.GetForConnection(c.UserContext(), conn.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(review)
}
