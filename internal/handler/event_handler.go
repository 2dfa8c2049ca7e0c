package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/service"
	"github.com/guildhall/guildhall-backend/pkg/validation"
	"gorm.io/gorm"
)

type EventHandler struct {
	eventService      *service.EventService
	userService       *service.UserService
	membershipService *service.MembershipService
}

func NewEventHandler(
	eventService *service.EventService,
	userService *service.UserService,
	membershipService *service.MembershipService,
) *EventHandler {
	return &EventHandler{
		eventService:      eventService,
		userService:       userService,
		membershipService: membershipService,
	}
}

func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	category := models.Category(c.Query("category"))
	if category != "" && !category.IsValid() {
		return c.Status(fiber.StatusBadRequest).
			JSON(models.ErrorResponse("Unknown category"))
	}

	events, err := h.eventService.ListUpcoming(category, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(events, ""))
}

func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	event, err := h.eventService.GetEvent(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Event not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(event, ""))
}

func (h *EventHandler) JoinEvent(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not found"))
	}

	eligible, err := h.membershipService.CheckEligibility(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	if !eligible {
		return c.Status(fiber.StatusForbidden).
			JSON(models.ErrorResponse(service.ErrMembershipRequired.Error()))
	}

	if err := h.eventService.Join(userID, eventID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Event not found"))
		case errors.Is(err, service.ErrAlreadyJoined):
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse(err.Error()))
		case errors.Is(err, service.ErrEventFull), errors.Is(err, service.ErrEventInPast):
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
		}
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(nil, "Registration confirmed"))
}

func (h *EventHandler) LeaveEvent(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if err := h.eventService.Leave(userID, eventID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotJoined):
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse(err.Error()))
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
		}
	}

	return c.JSON(models.SuccessResponse(nil, "Registration cancelled"))
}

func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	var req models.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Title, category and start time are required"))
	}
	if !req.Category.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Unknown category"))
	}

	event, err := h.eventService.CreateEvent(req, userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(event, "Event created"))
}

func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	var req models.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if req.Category != nil && !req.Category.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Unknown category"))
	}

	event, err := h.eventService.UpdateEvent(eventID, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Event not found"))
		}
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(event, "Event updated"))
}

func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	if err := h.eventService.DeleteEvent(eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Event not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(nil, "Event deleted"))
}

func (h *EventHandler) RemoveParticipant(c *fiber.Ctx) error {
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user ID"))
	}

	if err := h.eventService.RemoveParticipant(eventID, userID); err != nil {
		if errors.Is(err, service.ErrNotJoined) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(nil, "Participant removed"))
}

func (h *EventHandler) RemoveAllParticipants(c *fiber.Ctx) error {
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	removed, err := h.eventService.RemoveAllParticipants(eventID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(fiber.Map{"removed": removed}, "All participants removed"))
}

func (h *EventHandler) SendReminders(c *fiber.Ctx) error {
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid event ID"))
	}

	sent, err := h.eventService.SendReminders(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Event not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(fiber.Map{"sent": sent}, "Reminders sent"))
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func currentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userID").(uint)
	return userID, ok
}
