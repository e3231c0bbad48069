package routes

import (
	"github.com/anjiri1684/tutor_connect/handlers"
	"github.com/anjiri1684/tutor_connect/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	protected := middleware.Protected(h.Config.JWTSecret)
	api.Get("/connections/:id/messages", protected, h.GetMessages)
	api.Post("/connections/:id/messages", protected, h.SendMessage)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(h.ServeWs))
}
