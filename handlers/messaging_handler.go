package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/anjiri1684/tutor_connect/middleware"
	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/anjiri1684/tutor_connect/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
)

type SendMessageRequest struct {
	Message string `json:"message" validate:"required,notblank"`
}

// GetMessages returns the chat of a connection. ?after=<messageId> returns
// only newer messages; ?group=date buckets them by calendar day.
func (h *Handler) GetMessages(c *fiber.Ctx) error {
	msgs, err := h.Chat.Read(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), c.Query("after"))
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{"poll_interval_ms": h.Config.ChatPollInterval.Milliseconds()}
	if c.Query("group") == "date" {
		resp["groups"] = services.GroupByDate(msgs, h.Config.Location())
	} else {
		resp["messages"] = msgs
	}
	return c.JSON(resp)
}

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	if err := validate.Struct(req); err != nil {
		return invalidRequest(c, err)
	}

	msg, err := h.Chat.Send(c.UserContext(), middleware.CurrentActor(c), c.Params("id"), req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type wsMessagePayload struct {
	ConnectionID string `json:"connection_id"`
	Content      string `json:"content"`
}

// ServeWs authenticates the socket with its first frame, then stores every
// incoming frame as a chat message. Events for the user arrive via the hub.
func (h *Handler) ServeWs(c *websocketcontrib.Conn) {
	var authMsg wsAuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Warn().Err(err).Msg("WebSocket auth failed: invalid or missing auth message")
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message", "kind": "unauthorized"})
		c.Close()
		return
	}

	actor, err := h.parseToken(authMsg.Token)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket auth failed: invalid token")
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token", "kind": "unauthorized"})
		c.Close()
		return
	}

	client := websocket.NewClient(actor.ID, c)
	h.Hub.Register(client)
	log.Info().Str("user_id", actor.ID).Msg("WebSocket client authenticated and registered")
	defer func() {
		h.Hub.Unregister(client)
		c.Close()
	}()

	for {
		var payload wsMessagePayload
		if err := c.ReadJSON(&payload); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure, websocketcontrib.CloseAbnormalClosure) {
				log.Debug().Str("user_id", actor.ID).Msg("WebSocket closed")
			} else {
				log.Warn().Err(err).Str("user_id", actor.ID).Msg("WebSocket read error")
			}
			return
		}

		msg, err := h.Chat.Send(context.Background(), actor, payload.ConnectionID, payload.Content)
		if err != nil {
			_, kind := errorStatus(err)
			client.Send(fiber.Map{"error": err.Error(), "kind": kind})
			continue
		}
		client.Send(fiber.Map{"kind": "message.sent", "message": msg})
	}
}

func (h *Handler) parseToken(tokenString string) (services.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.Config.JWTSecret), nil
	})
	if err != nil {
		return services.Actor{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return services.Actor{}, errors.New("invalid token")
	}
	id, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if id == "" {
		return services.Actor{}, errors.New("token has no user_id")
	}
	return services.Actor{ID: id, Role: models.Role(role)}, nil
}
