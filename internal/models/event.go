package models

import (
	"time"
)

// Category is the closed set of event types the community runs.
type Category string

const (
	CategoryBoardGames  Category = "board_games"
	CategoryRolePlaying Category = "role_playing"
)

func (c Category) IsValid() bool {
	return c == CategoryBoardGames || c == CategoryRolePlaying
}

type Event struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	Title       string   `json:"title" gorm:"size:100;not null"`
	Description string   `json:"description" gorm:"type:text"`
	Category    Category `json:"category" gorm:"size:20;not null"`

	StartsAt time.Time `json:"starts_at" gorm:"not null"`

	// Capacity bounds the participant count when set. CapacityOverride is a
	// manual correction admins can apply to past events.
	Capacity         *int `json:"capacity"`
	CapacityOverride *int `json:"capacity_override"`

	XPReward int     `json:"xp_reward" gorm:"default:50"`
	Price    float64 `json:"price" gorm:"type:decimal(10,2);default:15.00"`
	ImageURL string  `json:"image_url" gorm:"size:255"`

	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Participations []Participation `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// IsPast reports whether the event has already started at the given instant.
func (e *Event) IsPast(now time.Time) bool {
	return !e.StartsAt.After(now)
}

type EventRequest struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description"`
	Category    Category `json:"category" validate:"required"`
	StartsAt    string   `json:"starts_at" validate:"required"`
	Capacity    *int     `json:"capacity"`
	XPReward    int      `json:"xp_reward"`
	Price       float64  `json:"price"`
	ImageURL    string   `json:"image_url"`
}

type UpdateEventRequest struct {
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	Category         *Category `json:"category"`
	StartsAt         *string   `json:"starts_at"`
	Capacity         *int      `json:"capacity"`
	CapacityOverride *int      `json:"capacity_override"`
	XPReward         *int      `json:"xp_reward"`
	Price            *float64  `json:"price"`
	ImageURL         *string   `json:"image_url"`
}

type EventResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       Category  `json:"category"`
	StartsAt       time.Time `json:"starts_at"`
	Capacity       *int      `json:"capacity"`
	XPReward       int       `json:"xp_reward"`
	Price          float64   `json:"price"`
	ImageURL       string    `json:"image_url"`
	Participants   int       `json:"participants"`
	SpotsAvailable *int      `json:"spots_available"`
}
