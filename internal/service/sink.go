package service

import "time"

// NotificationSink is the outbound mail boundary. Implementations deliver
// fire-and-forget messages; callers treat failures as log-and-continue.
type NotificationSink interface {
	SendWelcome(to, firstName string) error
	SendVerification(to, firstName, token string) error
	SendJoinConfirmation(to, firstName, eventTitle string, startsAt time.Time) error
	SendEventReminder(to, firstName, eventTitle string, startsAt time.Time) error
}
