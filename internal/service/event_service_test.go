package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/pkg/level"
)

func TestJoin(t *testing.T) {
	t.Run("creates a participation and awards the frozen XP", func(t *testing.T) {
		f := newFixture(t)
		svc := f.eventService()
		user := f.createUser(t, &models.User{XP: 450, Level: level.Bronze})
		event := f.createEvent(t, &models.Event{XPReward: 100})

		require.NoError(t, svc.Join(user.ID, event.ID))

		stored, err := f.userRepo.GetByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, 550, stored.XP)
		assert.Equal(t, level.Silver, stored.Level)

		p, err := f.participationRepo.GetByUserAndEvent(user.ID, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 100, p.XPEarned)

		require.Len(t, f.sink.byKind("join_confirmation"), 1)
	})

	t.Run("joining twice fails", func(t *testing.T) {
		f := newFixture(t)
		svc := f.eventService()
		user := f.createUser(t, &models.User{})
		event := f.createEvent(t, &models.Event{})

		require.NoError(t, svc.Join(user.ID, event.ID))
		assert.ErrorIs(t, svc.Join(user.ID, event.ID), ErrAlreadyJoined)

		stored, err := f.userRepo.GetByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, stored.XP)
	})

	t.Run("past event is refused", func(t *testing.T) {
		f := newFixture(t)
		svc := f.eventService()
		user := f.createUser(t, &models.User{})
		event := f.createEvent(t, &models.Event{StartsAt: f.clock.Now().Add(-time.Hour)})

		assert.ErrorIs(t, svc.Join(user.ID, event.ID), ErrEventInPast)
	})

	t.Run("full event is refused", func(t *testing.T) {
		f := newFixture(t)
		svc := f.eventService()
		capacity := 2
		event := f.createEvent(t, &models.Event{Capacity: &capacity})

		first := f.createUser(t, &models.User{})
		second := f.createUser(t, &models.User{})
		third := f.createUser(t, &models.User{})

		require.NoError(t, svc.Join(first.ID, event.ID))
		require.NoError(t, svc.Join(second.ID, event.ID))
		assert.ErrorIs(t, svc.Join(third.ID, event.ID), ErrEventFull)

		stored, err := f.userRepo.GetByID(third.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.XP)
	})

	t.Run("join succeeds even when the confirmation email fails", func(t *testing.T) {
		f := newFixture(t)
		svc := f.eventService()
		user := f.createUser(t, &models.User{})
		f.sink.failFor[user.Email] = true
		event := f.createEvent(t, &models.Event{})

		require.NoError(t, svc.Join(user.ID, event.ID))

		exists, err := f.participationRepo.Exists(user.ID, event.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestLeave(t *testing.T) {
	t.Run("deducts the frozen XP and recomputes the level", func(t *testing.T) {
		f := newFixture(t)
		svc := f.eventService()
		user := f.createUser(t, &models.User{XP: 450, Level: level.Bronze})
		event := f.createEvent(t, &models.Event{XPReward: 100})

		require.NoError(t, svc.Join(user.ID, event.ID))
		require.NoError(t, svc.Leave(user.ID, event.ID))

		stored, err := f.userRepo.GetByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, 450, stored.XP)
		assert.Equal(t, level.Bronze, stored.Level)

		exists, err := f.participationRepo.Exists(user.ID, event.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("frozen XP wins over a changed reward", func(t *testing.T) {
		f := newFixture(t)
		svc := f.eventService()
		user := f.createUser(t, &models.User{})
		event := f.createEvent(t, &models.Event{XPReward: 100})

		require.NoError(t, svc.Join(user.ID, event.ID))

		event.XPReward = 500
		require.NoError(t, f.eventRepo.Update(event))

		require.NoError(t, svc.Leave(user.ID, event.ID))

		stored, err := f.userRepo.GetByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.XP)
	})

	t.Run("leaving without a participation fails", func(t *testing.T) {
		f := newFixture(t)
		svc := f.eventService()
		user := f.createUser(t, &models.User{})
		event := f.createEvent(t, &models.Event{})

		assert.ErrorIs(t, svc.Leave(user.ID, event.ID), ErrNotJoined)
	})

	t.Run("deduction clamps at zero", func(t *testing.T) {
		f := newFixture(t)
		svc := f.eventService()
		user := f.createUser(t, &models.User{})
		event := f.createEvent(t, &models.Event{XPReward: 100})

		require.NoError(t, svc.Join(user.ID, event.ID))

		// Drain the XP behind the participation's back.
		stored, err := f.userRepo.GetByID(user.ID)
		require.NoError(t, err)
		stored.XP = 20
		require.NoError(t, f.userRepo.Update(stored))

		require.NoError(t, svc.Leave(user.ID, event.ID))

		stored, err = f.userRepo.GetByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.XP)
	})
}

func TestRemoveAllParticipants(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()
	event := f.createEvent(t, &models.Event{XPReward: 100})

	first := f.createUser(t, &models.User{})
	second := f.createUser(t, &models.User{})
	require.NoError(t, svc.Join(first.ID, event.ID))
	require.NoError(t, svc.Join(second.ID, event.ID))

	removed, err := svc.RemoveAllParticipants(event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err := f.participationRepo.CountForEvent(event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	stored, err := f.userRepo.GetByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.XP)
}

func TestIsFull(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()

	t.Run("no capacity means never full", func(t *testing.T) {
		event := f.createEvent(t, &models.Event{})
		full, err := svc.IsFull(event)
		require.NoError(t, err)
		assert.False(t, full)
	})

	t.Run("full at capacity", func(t *testing.T) {
		capacity := 1
		event := f.createEvent(t, &models.Event{Capacity: &capacity})
		user := f.createUser(t, &models.User{})
		require.NoError(t, svc.Join(user.ID, event.ID))

		full, err := svc.IsFull(event)
		require.NoError(t, err)
		assert.True(t, full)
	})
}

func TestListUpcoming(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()

	f.createEvent(t, &models.Event{Title: "Past", StartsAt: f.clock.Now().Add(-time.Hour)})
	f.createEvent(t, &models.Event{Title: "Soon", StartsAt: f.clock.Now().Add(time.Hour)})
	f.createEvent(t, &models.Event{
		Title: "Campaign", Category: models.CategoryRolePlaying,
		StartsAt: f.clock.Now().Add(2 * time.Hour),
	})

	all, err := svc.ListUpcoming("", 20)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Soon", all[0].Title)

	rpg, err := svc.ListUpcoming(models.CategoryRolePlaying, 20)
	require.NoError(t, err)
	require.Len(t, rpg, 1)
	assert.Equal(t, "Campaign", rpg[0].Title)
}

func TestCreateAndUpdateEvent(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()

	t.Run("default XP reward applies", func(t *testing.T) {
		event, err := svc.CreateEvent(models.EventRequest{
			Title:    "One Shot",
			Category: models.CategoryRolePlaying,
			StartsAt: f.clock.Now().Add(24 * time.Hour).Format(time.RFC3339),
		}, 1)
		require.NoError(t, err)
		assert.Equal(t, 50, event.XPReward)
	})

	t.Run("invalid start time is rejected", func(t *testing.T) {
		_, err := svc.CreateEvent(models.EventRequest{
			Title:    "Bad",
			Category: models.CategoryBoardGames,
			StartsAt: "tomorrow",
		}, 1)
		assert.Error(t, err)
	})

	t.Run("capacity override only applies to past events", func(t *testing.T) {
		override := 30

		future := f.createEvent(t, &models.Event{StartsAt: f.clock.Now().Add(24 * time.Hour)})
		updated, err := svc.UpdateEvent(future.ID, models.UpdateEventRequest{CapacityOverride: &override})
		require.NoError(t, err)
		assert.Nil(t, updated.CapacityOverride)

		past := f.createEvent(t, &models.Event{StartsAt: f.clock.Now().Add(-24 * time.Hour)})
		updated, err = svc.UpdateEvent(past.ID, models.UpdateEventRequest{CapacityOverride: &override})
		require.NoError(t, err)
		require.NotNil(t, updated.CapacityOverride)
		assert.Equal(t, 30, *updated.CapacityOverride)
	})
}

func TestSendReminders(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()
	event := f.createEvent(t, &models.Event{Title: "Tourney"})

	first := f.createUser(t, &models.User{})
	second := f.createUser(t, &models.User{})
	require.NoError(t, svc.Join(first.ID, event.ID))
	require.NoError(t, svc.Join(second.ID, event.ID))

	f.sink.failFor[first.Email] = true

	sent, err := svc.SendReminders(event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	reminders := f.sink.byKind("reminder")
	require.Len(t, reminders, 1)
	assert.Equal(t, second.Email, reminders[0].To)
	assert.Equal(t, "Tourney", reminders[0].Title)
}
