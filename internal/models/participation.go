package models

import "time"

// Participation links a user to an event. XPEarned is frozen at join time
// and is what gets deducted on leave, even if the event's reward changes
// later.
type Participation struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	UserID  uint `json:"user_id" gorm:"not null;uniqueIndex:idx_user_event"`
	EventID uint `json:"event_id" gorm:"not null;uniqueIndex:idx_user_event"`

	XPEarned int       `json:"xp_earned"`
	JoinedAt time.Time `json:"joined_at"`

	User  User  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Event Event `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
