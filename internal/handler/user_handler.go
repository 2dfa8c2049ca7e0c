package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/service"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService       *service.UserService
	membershipService *service.MembershipService
}

func NewUserHandler(userService *service.UserService, membershipService *service.MembershipService) *UserHandler {
	return &UserHandler{
		userService:       userService,
		membershipService: membershipService,
	}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	profile, err := h.userService.Profile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("User not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(profile, ""))
}

func (h *UserHandler) CancelMembership(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	if err := h.membershipService.Cancel(userID); err != nil {
		switch {
		case errors.Is(err, service.ErrPrivilegedAccount):
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse(err.Error()))
		case errors.Is(err, service.ErrFutureCommitments):
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse(err.Error()))
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
		}
	}

	return c.JSON(models.SuccessResponse(nil, "Membership cancelled"))
}

func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	if err := h.membershipService.DeleteAccount(userID); err != nil {
		switch {
		case errors.Is(err, service.ErrPrivilegedAccount):
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse(err.Error()))
		case errors.Is(err, service.ErrActiveMembership):
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse(err.Error()))
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
		}
	}

	return c.JSON(models.SuccessResponse(nil, "Account deleted"))
}

func (h *UserHandler) Leaderboard(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	role := models.Role(c.Query("role"))
	if role != "" && !role.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Unknown role"))
	}

	entries, err := h.userService.Leaderboard(role, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(entries, ""))
}

func (h *UserHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.userService.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(stats, ""))
}
