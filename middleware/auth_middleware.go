package middleware

import (
	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Missing or malformed JWT", "kind": "unauthorized"})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"error": "Invalid or expired JWT", "kind": "unauthorized"})
}

// CurrentActor reads the caller from the token placed in Locals by Protected.
// It returns the zero Actor when the request is unauthenticated.
func CurrentActor(c *fiber.Ctx) services.Actor {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return services.Actor{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return services.Actor{}
	}
	id, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	return services.Actor{ID: id, Role: models.Role(role)}
}

func StudentRequired() fiber.Handler {
	return roleRequired(models.RoleStudent, "Forbidden: Student access required")
}

func TutorRequired() fiber.Handler {
	return roleRequired(models.RoleTutor, "Forbidden: Tutor access required")
}

func roleRequired(role models.Role, msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentActor(c).Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": msg,
				"kind":  "forbidden",
			})
		}
		return c.Next()
	}
}
