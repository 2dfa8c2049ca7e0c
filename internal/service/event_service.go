package service

import (
	"errors"
	"time"

	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventService owns the event/participation ledger: listings, the
// join/leave protocol with its frozen XP awards, and admin maintenance.
type EventService struct {
	db                *gorm.DB
	eventRepo         *repository.EventRepository
	userRepo          *repository.UserRepository
	participationRepo *repository.ParticipationRepository
	sink              NotificationSink
	clock             Clock
	logger            *zap.Logger
}

func NewEventService(
	db *gorm.DB,
	eventRepo *repository.EventRepository,
	userRepo *repository.UserRepository,
	participationRepo *repository.ParticipationRepository,
	sink NotificationSink,
	clock Clock,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		db:                db,
		eventRepo:         eventRepo,
		userRepo:          userRepo,
		participationRepo: participationRepo,
		sink:              sink,
		clock:             clock,
		logger:            logger,
	}
}

func (s *EventService) ListUpcoming(category models.Category, limit int) ([]models.EventResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	events, err := s.eventRepo.ListUpcoming(s.clock.Now(), category, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]models.EventResponse, 0, len(events))
	for i := range events {
		resp, err := s.toResponse(&events[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func (s *EventService) GetEvent(id uint) (*models.EventResponse, error) {
	event, err := s.eventRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(event)
}

// IsFull reports whether the participant count has reached the capacity.
// Events without a capacity are never full.
func (s *EventService) IsFull(event *models.Event) (bool, error) {
	if event.Capacity == nil {
		return false, nil
	}
	count, err := s.participationRepo.CountForEvent(event.ID)
	if err != nil {
		return false, err
	}
	return count >= int64(*event.Capacity), nil
}

// Join registers the user. Participation creation, the XP award and the
// level recompute commit together; the confirmation email is best-effort
// afterwards and never rolls the join back.
func (s *EventService) Join(userID, eventID uint) error {
	var user *models.User
	var event *models.Event

	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		events := s.eventRepo.WithTx(tx)
		participations := s.participationRepo.WithTx(tx)

		var err error
		user, err = users.GetByID(userID)
		if err != nil {
			return err
		}
		event, err = events.GetByID(eventID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if event.IsPast(now) {
			return ErrEventInPast
		}

		exists, err := participations.Exists(userID, eventID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyJoined
		}

		if event.Capacity != nil {
			count, err := participations.CountForEvent(eventID)
			if err != nil {
				return err
			}
			if count >= int64(*event.Capacity) {
				return ErrEventFull
			}
		}

		participation := &models.Participation{
			UserID:   userID,
			EventID:  eventID,
			XPEarned: event.XPReward,
			JoinedAt: now,
		}
		if err := participations.Create(participation); err != nil {
			return err
		}

		user.AddXP(event.XPReward)
		return users.Update(user)
	})
	if err != nil {
		return err
	}

	if err := s.sink.SendJoinConfirmation(user.Email, user.FirstName, event.Title, event.StartsAt); err != nil {
		s.logger.Warn("join confirmation email failed",
			zap.Uint("user_id", userID),
			zap.Uint("event_id", eventID),
			zap.Error(err))
	}

	s.logger.Info("event joined",
		zap.Uint("user_id", userID),
		zap.Uint("event_id", eventID),
		zap.Int("xp_awarded", event.XPReward))
	return nil
}

// Leave deducts the frozen XP (clamped at zero), recomputes the level and
// deletes the participation in one transaction.
func (s *EventService) Leave(userID, eventID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		participations := s.participationRepo.WithTx(tx)

		participation, err := participations.GetByUserAndEvent(userID, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotJoined
			}
			return err
		}

		user, err := users.GetByID(userID)
		if err != nil {
			return err
		}

		user.AddXP(-participation.XPEarned)
		if err := users.Update(user); err != nil {
			return err
		}

		if err := participations.Delete(participation); err != nil {
			return err
		}

		s.logger.Info("event left",
			zap.Uint("user_id", userID),
			zap.Uint("event_id", eventID),
			zap.Int("xp_deducted", participation.XPEarned))
		return nil
	})
}

// RemoveParticipant is the admin path for kicking one participant, with the
// same deduct-and-recompute step as a voluntary leave.
func (s *EventService) RemoveParticipant(eventID, userID uint) error {
	return s.Leave(userID, eventID)
}

// RemoveAllParticipants clears the roster. Every deduction and deletion
// commits in a single transaction.
func (s *EventService) RemoveAllParticipants(eventID uint) (int, error) {
	removed := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		participations := s.participationRepo.WithTx(tx)

		list, err := participations.ListForEvent(eventID)
		if err != nil {
			return err
		}

		for i := range list {
			user, err := users.GetByID(list[i].UserID)
			if err != nil {
				return err
			}
			user.AddXP(-list[i].XPEarned)
			if err := users.Update(user); err != nil {
				return err
			}
			if err := participations.Delete(&list[i]); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("participants removed",
		zap.Uint("event_id", eventID),
		zap.Int("count", removed))
	return removed, nil
}

func (s *EventService) CreateEvent(req models.EventRequest, createdBy uint) (*models.Event, error) {
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		StartsAt:    startsAt,
		Capacity:    req.Capacity,
		XPReward:    req.XPReward,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		CreatedBy:   createdBy,
	}
	if event.XPReward == 0 {
		event.XPReward = 50
	}

	return s.eventRepo.Create(event)
}

func (s *EventService) UpdateEvent(id uint, req models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.StartsAt != nil {
		startsAt, err := time.Parse(time.RFC3339, *req.StartsAt)
		if err != nil {
			return nil, err
		}
		event.StartsAt = startsAt
	}
	if req.Capacity != nil {
		event.Capacity = req.Capacity
	}
	// Capacity override only applies to events that already happened.
	if req.CapacityOverride != nil && event.IsPast(s.clock.Now()) {
		event.CapacityOverride = req.CapacityOverride
	}
	if req.XPReward != nil {
		event.XPReward = *req.XPReward
	}
	if req.Price != nil {
		event.Price = *req.Price
	}
	if req.ImageURL != nil {
		event.ImageURL = *req.ImageURL
	}

	if err := s.eventRepo.Update(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) DeleteEvent(id uint) error {
	if _, err := s.eventRepo.GetByID(id); err != nil {
		return err
	}
	return s.eventRepo.Delete(id)
}

// SendReminders mails every participant of one event. Sends are
// independent; failures are logged and skipped.
func (s *EventService) SendReminders(eventID uint) (int, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return 0, err
	}

	participations, err := s.participationRepo.ListForEvent(eventID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, p := range participations {
		user, err := s.userRepo.GetByID(p.UserID)
		if err != nil {
			s.logger.Warn("reminder recipient lookup failed",
				zap.Uint("user_id", p.UserID), zap.Error(err))
			continue
		}
		if err := s.sink.SendEventReminder(user.Email, user.FirstName, event.Title, event.StartsAt); err != nil {
			s.logger.Warn("reminder send failed",
				zap.String("to", user.Email), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *EventService) toResponse(event *models.Event) (*models.EventResponse, error) {
	count, err := s.participationRepo.CountForEvent(event.ID)
	if err != nil {
		return nil, err
	}

	resp := &models.EventResponse{
		ID:           event.ID,
		Title:        event.Title,
		Description:  event.Description,
		Category:     event.Category,
		StartsAt:     event.StartsAt,
		Capacity:     event.Capacity,
		XPReward:     event.XPReward,
		Price:        event.Price,
		ImageURL:     event.ImageURL,
		Participants: int(count),
	}
	if event.Capacity != nil {
		spots := *event.Capacity - int(count)
		if spots < 0 {
			spots = 0
		}
		resp.SpotsAvailable = &spots
	}
	return resp, nil
}
