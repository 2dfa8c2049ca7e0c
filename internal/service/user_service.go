package service

import (
	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/repository"
	"github.com/guildhall/guildhall-backend/pkg/level"
)

// UserService serves profiles, the leaderboard and community stats.
type UserService struct {
	userRepo          *repository.UserRepository
	eventRepo         *repository.EventRepository
	participationRepo *repository.ParticipationRepository
	clock             Clock
}

func NewUserService(
	userRepo *repository.UserRepository,
	eventRepo *repository.EventRepository,
	participationRepo *repository.ParticipationRepository,
	clock Clock,
) *UserService {
	return &UserService{
		userRepo:          userRepo,
		eventRepo:         eventRepo,
		participationRepo: participationRepo,
		clock:             clock,
	}
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

func (s *UserService) Profile(userID uint) (*models.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	joined, err := s.participationRepo.CountForUser(userID)
	if err != nil {
		return nil, err
	}

	return &models.ProfileResponse{
		User:          *user,
		LevelProgress: level.Progress(user.XP),
		XPToNext:      level.ToNext(user.XP),
		EventsJoined:  joined,
	}, nil
}

// Leaderboard ranks active users by XP, optionally filtered by role.
func (s *UserService) Leaderboard(role models.Role, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	users, err := s.userRepo.Leaderboard(role, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, models.LeaderboardEntry{
			Rank:     i + 1,
			Nickname: u.Nickname,
			Role:     u.Role,
			XP:       u.XP,
			Level:    string(u.Level),
		})
	}
	return entries, nil
}

func (s *UserService) Stats() (*models.CommunityStats, error) {
	stats := &models.CommunityStats{}

	var err error
	if stats.TotalMembers, err = s.userRepo.CountActive(); err != nil {
		return nil, err
	}
	if stats.VerifiedMembers, err = s.userRepo.CountVerified(); err != nil {
		return nil, err
	}
	if stats.MembersByRole, err = s.userRepo.CountByRole(); err != nil {
		return nil, err
	}
	if stats.TotalEvents, err = s.eventRepo.CountAll(); err != nil {
		return nil, err
	}
	if stats.UpcomingEvents, err = s.eventRepo.CountUpcoming(s.clock.Now()); err != nil {
		return nil, err
	}
	if stats.TotalParticipations, err = s.participationRepo.CountAll(); err != nil {
		return nil, err
	}

	return stats, nil
}
