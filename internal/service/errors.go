package service

import "errors"

var (
	// Ledger conflicts
	ErrAlreadyJoined = errors.New("already joined this event")
	ErrEventFull     = errors.New("event is full")
	ErrEventInPast   = errors.New("event has already taken place")
	ErrNotJoined     = errors.New("not joined to this event")

	// Membership guards
	ErrMembershipRequired = errors.New("an active membership is required")
	ErrPrivilegedAccount  = errors.New("privileged accounts cannot perform this action")
	ErrFutureCommitments  = errors.New("cancel your upcoming event registrations first")
	ErrActiveMembership   = errors.New("cancel your membership before deleting the account")

	// Registration / login
	ErrEmailTaken         = errors.New("email already registered")
	ErrNicknameTaken      = errors.New("nickname already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrEmailNotVerified   = errors.New("email address not verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
