package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nearbuy/nearbuy-api/internal/auth"
	"github.com/nearbuy/nearbuy-api/internal/utils"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "nearbuy_session"

// SessionProtected validates the session token from the cookie or the
// Authorization header, checks the session is still live in the store and
// loads user identity into request locals. Unauthenticated requests get 401.
func SessionProtected(secret string, store *auth.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := sessionToken(c)
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		claims, err := auth.ParseToken(secret, tokenString)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		userID, err := claims.UserID()
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		storedUser, err := store.Validate(c.UserContext(), claims.SessionID)
		if err != nil || storedUser != userID {
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		c.Locals("user_id", userID)
		c.Locals("session_id", claims.SessionID)

		return c.Next()
	}
}

func sessionToken(c *fiber.Ctx) string {
	if cookie := strings.TrimSpace(c.Cookies(SessionCookieName)); cookie != "" {
		return cookie
	}

	authorization := c.Get("Authorization")
	const bearer = "Bearer "
	if len(authorization) > len(bearer) && strings.EqualFold(authorization[:len(bearer)], bearer) {
		return strings.TrimSpace(authorization[len(bearer):])
	}

	return ""
}
