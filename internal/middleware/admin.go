package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nearbuy/nearbuy-api/internal/repository"
	"github.com/nearbuy/nearbuy-api/internal/utils"
)

// AdminOnly ensures the authenticated user holds the admin flag. Non-admins
// receive 401, matching the public API contract which does not distinguish
// missing privilege from missing authentication on admin routes.
func AdminOnly(users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uint)
		if !ok || userID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		user, err := users.FindByID(c.UserContext(), userID)
		if err != nil || !user.IsAdmin || user.IsSuspended {
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		c.Locals("is_admin", true)

		return c.Next()
	}
}
