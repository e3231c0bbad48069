package routes

import (
	"github.com/anjiri1684/tutor_connect/handlers"
	"github.com/anjiri1684/tutor_connect/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth", middleware.RateLimit(h.Config.RateLimitMax, h.Config.RateLimitWindow))
	auth.Post("/register", h.RegisterUser)
	auth.Post("/login", h.LoginUser)
}
