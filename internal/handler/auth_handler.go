package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/service"
	"github.com/guildhall/guildhall-backend/pkg/validation"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService    *service.AuthService
	paymentService *service.PaymentService
	logger         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, paymentService *service.PaymentService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		paymentService: paymentService,
		logger:         logger,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(models.ErrorResponse("Invalid request body"))
	}

	resp, violations, err := h.authService.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrNicknameTaken):
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse(err.Error()))
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
		}
	}
	if len(violations) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse(violations))
	}

	// Hero accounts pay upfront; the account is created unpaid and the
	// webhook flips it once the charge completes.
	if resp.User.Role.IsPaidTier() {
		session, err := h.paymentService.CreateMembershipCheckout(resp.User.ID)
		if err != nil {
			h.logger.Warn("membership checkout at registration failed",
				zap.Uint("user_id", resp.User.ID), zap.Error(err))
		} else {
			resp.Checkout = session
		}
	}

	return c.Status(fiber.StatusCreated).
		JSON(models.SuccessResponse(resp, "Account created, check your inbox to verify your email"))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(models.ErrorResponse("Email and password are required"))
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
		case errors.Is(err, service.ErrAccountInactive), errors.Is(err, service.ErrEmailNotVerified):
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse(err.Error()))
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
		}
	}

	return c.JSON(models.SuccessResponse(resp, ""))
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req models.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(models.ErrorResponse("Token is required"))
	}

	if err := h.authService.VerifyEmail(req.Token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(nil, "Email verified, you can now log in"))
}
