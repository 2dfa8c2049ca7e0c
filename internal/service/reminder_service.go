package service

import (
	"time"

	"github.com/guildhall/guildhall-backend/internal/repository"
	"go.uber.org/zap"
)

// ReminderService runs the daily sweep: find tomorrow's events and mail
// every participant. Each send is independent; one failing recipient never
// blocks the rest.
type ReminderService struct {
	eventRepo         *repository.EventRepository
	userRepo          *repository.UserRepository
	participationRepo *repository.ParticipationRepository
	sink              NotificationSink
	clock             Clock
	location          *time.Location
	logger            *zap.Logger
}

func NewReminderService(
	eventRepo *repository.EventRepository,
	userRepo *repository.UserRepository,
	participationRepo *repository.ParticipationRepository,
	sink NotificationSink,
	clock Clock,
	location *time.Location,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		eventRepo:         eventRepo,
		userRepo:          userRepo,
		participationRepo: participationRepo,
		sink:              sink,
		clock:             clock,
		location:          location,
		logger:            logger,
	}
}

// SendDailyReminders mails participants of every event scheduled tomorrow,
// where tomorrow is the next calendar day in the configured zone. Returns
// the number of reminders actually delivered.
func (s *ReminderService) SendDailyReminders() (int, error) {
	now := s.clock.Now().In(s.location)
	tomorrow := now.AddDate(0, 0, 1)
	windowStart := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, s.location)
	windowEnd := windowStart.AddDate(0, 0, 1)

	events, err := s.eventRepo.ListBetween(windowStart, windowEnd)
	if err != nil {
		return 0, err
	}

	s.logger.Info("daily reminder sweep",
		zap.Int("events_tomorrow", len(events)),
		zap.Time("window_start", windowStart))

	sent := 0
	for i := range events {
		event := &events[i]

		participations, err := s.participationRepo.ListForEvent(event.ID)
		if err != nil {
			s.logger.Warn("participant listing failed",
				zap.Uint("event_id", event.ID), zap.Error(err))
			continue
		}
		if len(participations) == 0 {
			continue
		}

		for _, p := range participations {
			user, err := s.userRepo.GetByID(p.UserID)
			if err != nil {
				s.logger.Warn("reminder recipient lookup failed",
					zap.Uint("user_id", p.UserID), zap.Error(err))
				continue
			}

			if err := s.sink.SendEventReminder(user.Email, user.FirstName, event.Title, event.StartsAt); err != nil {
				s.logger.Warn("reminder send failed",
					zap.String("to", user.Email),
					zap.Uint("event_id", event.ID),
					zap.Error(err))
				continue
			}
			sent++
		}
	}

	s.logger.Info("daily reminder sweep done", zap.Int("sent", sent))
	return sent, nil
}
