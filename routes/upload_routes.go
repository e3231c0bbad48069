package routes

import (
	"github.com/anjiri1684/tutor_connect/handlers"
	"github.com/anjiri1684/tutor_connect/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	uploads := api.Group("/uploads", middleware.Protected(h.Config.JWTSecret))
	uploads.Post("/signature", h.GenerateUploadSignature)
}
