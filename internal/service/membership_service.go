package service

import (
	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MembershipService owns the paid-status lifecycle: eligibility evaluation,
// renewals, cancellation and account deletion.
type MembershipService struct {
	db                *gorm.DB
	userRepo          *repository.UserRepository
	participationRepo *repository.ParticipationRepository
	clock             Clock
	keepHistory       bool
	logger            *zap.Logger
}

func NewMembershipService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	participationRepo *repository.ParticipationRepository,
	clock Clock,
	keepHistoryOnCancel bool,
	logger *zap.Logger,
) *MembershipService {
	return &MembershipService{
		db:                db,
		userRepo:          userRepo,
		participationRepo: participationRepo,
		clock:             clock,
		keepHistory:       keepHistoryOnCancel,
		logger:            logger,
	}
}

// CheckEligibility reports whether the user may join events. Not read-only:
// a lapsed expiry flips HasPaid to false and persists before returning.
func (s *MembershipService) CheckEligibility(user *models.User) (bool, error) {
	if user.IsExempt() {
		return true, nil
	}

	if !user.HasPaid {
		return false, nil
	}

	if user.MembershipExpiresAt != nil && user.MembershipExpiresAt.Before(s.clock.Now()) {
		user.HasPaid = false
		if err := s.userRepo.Update(user); err != nil {
			return false, err
		}
		s.logger.Info("membership lapsed",
			zap.Uint("user_id", user.ID),
			zap.Time("expired_at", *user.MembershipExpiresAt))
		return false, nil
	}

	return true, nil
}

// Renew applies a successful membership payment and persists the record.
func (s *MembershipService) Renew(user *models.User, fromExistingExpiry bool) error {
	user.RenewMembership(s.clock.Now(), fromExistingExpiry)
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	s.logger.Info("membership renewed",
		zap.Uint("user_id", user.ID),
		zap.Time("expires_at", *user.MembershipExpiresAt))
	return nil
}

// Cancel revokes the membership. Rejected for privileged accounts and while
// the user still holds a registration for a future event. Participation
// history is purged or preserved per configuration; either way no XP is
// deducted here.
func (s *MembershipService) Cancel(userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if user.IsExempt() {
		return ErrPrivilegedAccount
	}

	hasFuture, err := s.participationRepo.HasFutureForUser(userID, s.clock.Now())
	if err != nil {
		return err
	}
	if hasFuture {
		return ErrFutureCommitments
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		user.HasPaid = false
		user.MembershipExpiresAt = nil
		user.PaymentStatus = models.PaymentPending
		if user.Role.IsPaidTier() {
			user.Role = models.RoleAdventurer
		}

		if err := s.userRepo.WithTx(tx).Update(user); err != nil {
			return err
		}

		if !s.keepHistory {
			if err := s.participationRepo.WithTx(tx).DeleteAllForUser(userID); err != nil {
				return err
			}
		}

		s.logger.Info("membership cancelled",
			zap.Uint("user_id", user.ID),
			zap.Bool("history_kept", s.keepHistory))
		return nil
	})
}

// DeleteAccount removes the user entirely. Rejected for privileged accounts
// and while a membership is still active.
func (s *MembershipService) DeleteAccount(userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if user.IsExempt() {
		return ErrPrivilegedAccount
	}
	if user.HasPaid {
		return ErrActiveMembership
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.participationRepo.WithTx(tx).DeleteAllForUser(userID); err != nil {
			return err
		}
		if err := s.userRepo.WithTx(tx).Delete(userID); err != nil {
			return err
		}

		s.logger.Info("account deleted", zap.Uint("user_id", userID))
		return nil
	})
}
