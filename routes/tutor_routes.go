package routes

import (
	"github.com/anjiri1684/tutor_connect/handlers"
	"github.com/anjiri1684/tutor_connect/middleware"
	"github.com/gofiber/fiber/v2"
)

func TutorRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")
	protected := middleware.Protected(h.Config.JWTSecret)

	tutors := api.Group("/tutors")
	tutors.Get("", h.ListTutors)
	tutors.Get("/recommended", protected, middleware.StudentRequired(), h.RecommendedTutors)
	tutors.Get("/:tutorId", h.GetTutor)
	tutors.Get("/:tutorId/reviews", h.GetTutorReviews)
	tutors.Get("/:tutorId/rating", h.GetTutorRating)

	students := api.Group("/students", protected, middleware.TutorRequired())
	students.Get("", h.ListStudents)
}
