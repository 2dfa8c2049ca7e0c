package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/service"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	webhookSecret  string
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, webhookSecret string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		webhookSecret:  webhookSecret,
		logger:         logger,
	}
}

// HandleWebhook verifies the Stripe signature before anything else; an
// unverifiable or unparseable payload never reaches the reconciler.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		h.logger.Warn("webhook rejected", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).
			JSON(models.ErrorResponse("Webhook verification failed"))
	}

	if err := h.paymentService.HandleWebhookEvent(&event); err != nil {
		h.logger.Error("webhook processing failed",
			zap.String("stripe_id", event.ID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).
			JSON(models.ErrorResponse(err.Error()))
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PaymentHandler) CreateMembershipCheckout(c *fiber.Ctx) error {
	return h.createCheckout(c, h.paymentService.CreateMembershipCheckout)
}

func (h *PaymentHandler) CreateRenewalCheckout(c *fiber.Ctx) error {
	return h.createCheckout(c, h.paymentService.CreateRenewalCheckout)
}

func (h *PaymentHandler) createCheckout(c *fiber.Ctx, create func(uint) (*models.CheckoutSession, error)) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	session, err := create(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(session, ""))
}

func (h *PaymentHandler) CreateEventCheckout(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	session, err := h.paymentService.CreateEventCheckout(userID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Event not found"))
		case errors.Is(err, service.ErrEventInPast):
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
		}
	}

	return c.JSON(models.SuccessResponse(session, ""))
}
