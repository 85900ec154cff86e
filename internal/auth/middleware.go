package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocalsUserID is the fiber Locals key the middleware stores the
// authenticated user id under.
const LocalsUserID = "user_id"

// Middleware authenticates requests via a bearer token or the access_token
// cookie and stores the user id in Locals.
func Middleware(m *JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ""
		if h := c.Get("Authorization"); h != "" {
			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization header"})
			}
			token = parts[1]
		} else {
			token = c.Cookies("access_token")
		}
		if token == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "missing credentials"})
		}
		uid, err := m.Verify(token)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals(LocalsUserID, uid)
		return c.Next()
	}
}

// UserID extracts the authenticated user id set by Middleware.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(LocalsUserID).(string)
	return uid
}
