package models

type RegisterRequest struct {
	Nickname        string `json:"nickname"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            Role   `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`

	// Checkout is set when the chosen role requires an upfront payment;
	// the account stays unpaid until the webhook confirms the charge.
	Checkout *CheckoutSession `json:"checkout,omitempty"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Nickname string `json:"nickname"`
	Role     Role   `json:"role"`
	XP       int    `json:"xp"`
	Level    string `json:"level"`
}

type ProfileResponse struct {
	User          User    `json:"user"`
	LevelProgress float64 `json:"level_progress"`
	XPToNext      int     `json:"xp_to_next"`
	EventsJoined  int64   `json:"events_joined"`
}

type CommunityStats struct {
	TotalMembers        int64          `json:"total_members"`
	VerifiedMembers     int64          `json:"verified_members"`
	MembersByRole       map[Role]int64 `json:"members_by_role"`
	TotalEvents         int64          `json:"total_events"`
	UpcomingEvents      int64          `json:"upcoming_events"`
	TotalParticipations int64          `json:"total_participations"`
}
