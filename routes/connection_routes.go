package routes

import (
	"github.com/anjiri1684/tutor_connect/handlers"
	"github.com/anjiri1684/tutor_connect/middleware"
	"github.com/gofiber/fiber/v2"
)

func ConnectionRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	connections := api.Group("/connections", middleware.Protected(h.Config.JWTSecret))
	connections.Post("", middleware.StudentRequired(), h.RequestConnection)
	connections.Get("", h.ListConnections)
	connections.Get("/with/:tutorId", middleware.StudentRequired(), h.ConnectionWith)
	connections.Get("/:id", h.GetConnection)
	connections.Put("/:id/accept", middleware.TutorRequired(), h.AcceptConnection)
	connections.Put("/:id/reject", middleware.TutorRequired(), h.RejectConnection)

	connections.Get("/:id/review", h.GetReview)
	connections.Post("/:id/review", middleware.StudentRequired(), h.SubmitReview)
}
