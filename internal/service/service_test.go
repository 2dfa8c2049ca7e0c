package service

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Participation{},
		&models.ProcessedPaymentEvent{},
	))
	return db
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type sentMail struct {
	Kind  string
	To    string
	Title string
}

// fakeSink records every outbound notification. When fail is set, each
// send to an address in failFor returns an error.
type fakeSink struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{failFor: map[string]bool{}}
}

func (s *fakeSink) record(kind, to, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[to] {
		return errors.New("delivery failed")
	}
	s.sent = append(s.sent, sentMail{Kind: kind, To: to, Title: title})
	return nil
}

func (s *fakeSink) SendWelcome(to, firstName string) error {
	return s.record("welcome", to, "")
}

func (s *fakeSink) SendVerification(to, firstName, token string) error {
	return s.record("verification", to, "")
}

func (s *fakeSink) SendJoinConfirmation(to, firstName, eventTitle string, startsAt time.Time) error {
	return s.record("join_confirmation", to, eventTitle)
}

func (s *fakeSink) SendEventReminder(to, firstName, eventTitle string, startsAt time.Time) error {
	return s.record("reminder", to, eventTitle)
}

func (s *fakeSink) byKind(kind string) []sentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentMail
	for _, m := range s.sent {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	db                *gorm.DB
	userRepo          *repository.UserRepository
	eventRepo         *repository.EventRepository
	participationRepo *repository.ParticipationRepository
	processedRepo     *repository.ProcessedPaymentEventRepository
	clock             *fakeClock
	sink              *fakeSink
	logger            *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	return &fixture{
		db:                db,
		userRepo:          repository.NewUserRepository(db),
		eventRepo:         repository.NewEventRepository(db),
		participationRepo: repository.NewParticipationRepository(db),
		processedRepo:     repository.NewProcessedPaymentEventRepository(db),
		clock:             newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		sink:              newFakeSink(),
		logger:            zap.NewNop(),
	}
}

var userSeq atomic.Uint64

func (f *fixture) createUser(t *testing.T, u *models.User) *models.User {
	t.Helper()
	if u.Nickname == "" {
		u.Nickname = fmt.Sprintf("player%d", userSeq.Add(1))
	}
	if u.Email == "" {
		u.Email = u.Nickname + "@example.com"
	}
	if u.FirstName == "" {
		u.FirstName = "Test"
	}
	if u.LastName == "" {
		u.LastName = "Player"
	}
	if u.PasswordHash == "" {
		u.PasswordHash = "x"
	}
	if u.Role == "" {
		u.Role = models.RoleAdventurer
	}
	u.Active = true
	require.NoError(t, f.userRepo.Create(u))
	return u
}

func (f *fixture) createEvent(t *testing.T, e *models.Event) *models.Event {
	t.Helper()
	if e.Title == "" {
		e.Title = "Game Night"
	}
	if e.Category == "" {
		e.Category = models.CategoryBoardGames
	}
	if e.StartsAt.IsZero() {
		e.StartsAt = f.clock.Now().Add(72 * time.Hour)
	}
	if e.XPReward == 0 {
		e.XPReward = 50
	}
	created, err := f.eventRepo.Create(e)
	require.NoError(t, err)
	return created
}

func (f *fixture) membershipService(keepHistory bool) *MembershipService {
	return NewMembershipService(f.db, f.userRepo, f.participationRepo, f.clock, keepHistory, f.logger)
}

func (f *fixture) eventService() *EventService {
	return NewEventService(f.db, f.eventRepo, f.userRepo, f.participationRepo, f.sink, f.clock, f.logger)
}
