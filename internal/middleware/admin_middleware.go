package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/repository"
)

// AdminMiddleware gates staff-only routes. Must run after AuthMiddleware.
func AdminMiddleware(userRepo *repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).
				JSON(models.ErrorResponse("User not authenticated"))
		}

		user, err := userRepo.GetByID(userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).
				JSON(models.ErrorResponse("User not found"))
		}

		if !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).
				JSON(models.ErrorResponse("Administrator access required"))
		}

		return c.Next()
	}
}
