package handlers

import (
	"context"

	"github.com/anjiri1684/tutor_connect/middleware"
	"github.com/anjiri1684/tutor_connect/models"
	"github.com/gofiber/fiber/v2"
)

type ConnectionRequest struct {
	TutorID string `json:"tutorId" validate:"required,notblank"`
}

// ConnectionResponse is a connection together with both parties and the
// latest chat message, as rendered on the dashboards.
type ConnectionResponse struct {
	models.Connection
	Student     *UserResponse       `json:"student,omitempty"`
	Tutor       *UserResponse       `json:"tutor,omitempty"`
	LastMessage *models.ChatMessage `json:"lastMessage,omitempty"`
}

func (h *Handler) connectionResponse(ctx context.Context, conn models.Connection) (ConnectionResponse, error) {
	resp := ConnectionResponse{Connection: conn}
	parties, err := h.Connections.Parties(ctx, conn)
	if err != nil {
		return resp, err
	}
	student, tutor := toUserResponse(parties.Student), toUserResponse(parties.Tutor)
	resp.Student, resp.Tutor = &student, &tutor

	resp.LastMessage, err = h.Chat.LastMessage(ctx, conn.ID)
	return resp, err
}

func (h *Handler) RequestConnection(c *fiber.Ctx) error {
	var req ConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	if err := validate.Struct(req); err != nil {
		return invalidRequest(c, err)
	}

	conn, err := h.Connections.Request(c.UserContext(), middleware.CurrentActor(c), req.TutorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conn)
}

// ListConnections returns the caller's connections, newest first, optionally
// filtered by ?status=.
func (h *Handler) ListConnections(c *fiber.Ctx) error {
	status := models.ConnectionStatus(c.Query("status"))
	switch status {
	case "", models.ConnectionPending, models.ConnectionAccepted, models.ConnectionRejected:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be one of pending, accepted, rejected",
			"kind":  "validation",
		})
	}

	ctx := c.UserContext()
	conns, err := h.Connections.AllForUser(ctx, middleware.CurrentActor(c).ID, status)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		resp, err := h.connectionResponse(ctx, conn)
		if err != nil {
			return respondError(c, err)
		}
		out = append(out, resp)
	}
	return c.JSON(out)
}

// ConnectionWith reports the caller's connection with the given tutor, if any.
func (h *Handler) ConnectionWith(c *fiber.Ctx) error {
	conn, err := h.Connections.StatusBetween(c.UserContext(), middleware.CurrentActor(c).ID, c.Params("tutorId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conn)
}

func (h *Handler) GetConnection(c *fiber.Ctx) error {
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
	resp, err := h.connectionResponse(c.UserContext(), conn)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *Handler) AcceptConnection(c *fiber.Ctx) error {
	conn, err := h.Connections.Accept(c.UserContext(), middleware.CurrentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conn)
}

func (h *Handler) RejectConnection(c *fiber.Ctx) error {
	conn, err := h.Connections.Reject(c.UserContext(), middleware.CurrentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conn)
}
