package models

import (
	"time"

	"github.com/guildhall/guildhall-backend/pkg/level"
)

// Role is the membership class governing pricing and privileges. Adventurer
// is the free tier, Hero the paid one; the staff tiers and Founder are
// assigned by hand and cannot be registered.
type Role string

const (
	RoleAdventurer Role = "adventurer"
	RoleHero       Role = "hero"
	RoleVeteran    Role = "veteran"
	RoleGameMaster Role = "game_master"
	RoleOrganizer  Role = "organizer"
	RoleFounder    Role = "founder"
)

// IsPrivileged reports whether the role is exempt from membership checks
// and protected from cancellation/deletion.
func (r Role) IsPrivileged() bool {
	return r == RoleFounder
}

// IsPaidTier reports whether the role is the one granted by a paid
// membership.
func (r Role) IsPaidTier() bool {
	return r == RoleHero
}

// IsRegisterable reports whether a new account may pick this role.
func (r Role) IsRegisterable() bool {
	return r == RoleAdventurer || r == RoleHero
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdventurer, RoleHero, RoleVeteran, RoleGameMaster, RoleOrganizer, RoleFounder:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Nickname     string `json:"nickname" gorm:"size:50;unique;not null"`
	FirstName    string `json:"first_name" gorm:"size:50;not null"`
	LastName     string `json:"last_name" gorm:"size:50;not null"`
	Email        string `json:"email" gorm:"size:100;unique;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`

	EmailVerified bool   `json:"email_verified" gorm:"default:false"`
	VerifyToken   string `json:"-" gorm:"size:100"`

	// Membership
	HasPaid             bool          `json:"has_paid" gorm:"default:false"`
	MembershipExpiresAt *time.Time    `json:"membership_expires_at"`
	PaymentStatus       PaymentStatus `json:"payment_status" gorm:"size:20;default:'pending'"`

	Role Role `json:"role" gorm:"size:20;not null;default:'adventurer'"`

	XP    int         `json:"xp" gorm:"default:0"`
	Level level.Level `json:"level" gorm:"size:20;default:'bronze'"`

	Active  bool `json:"active" gorm:"default:true"`
	IsAdmin bool `json:"is_admin" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Participations []Participation `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// IsExempt reports whether membership checks never apply: privileged roles
// and admins always have access.
func (u *User) IsExempt() bool {
	return u.Role.IsPrivileged() || u.IsAdmin
}

// MembershipTerm is the length of one paid membership period.
const MembershipTerm = 365 * 24 * time.Hour

// RenewMembership applies a successful payment to the record. The new
// expiry extends the existing one when fromExistingExpiry is set and one is
// present; otherwise it runs from now. Any grant or renewal promotes the
// base tier to the paid tier.
func (u *User) RenewMembership(now time.Time, fromExistingExpiry bool) {
	base := now
	if fromExistingExpiry && u.MembershipExpiresAt != nil {
		base = *u.MembershipExpiresAt
	}
	expiry := base.Add(MembershipTerm)

	u.HasPaid = true
	u.PaymentStatus = PaymentCompleted
	u.MembershipExpiresAt = &expiry

	if u.Role == RoleAdventurer {
		u.Role = RoleHero
	}
}

// AddXP adjusts the experience total (clamped at zero) and recomputes the
// stored level. Must be called at every XP mutation site.
func (u *User) AddXP(amount int) {
	u.XP += amount
	if u.XP < 0 {
		u.XP = 0
	}
	u.Level = level.FromXP(u.XP)
}
