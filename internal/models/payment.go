package models

import (
	"strconv"
	"time"
)

// Metadata keys carried on checkout sessions. These are the wire contract
// between session creation and the webhook reconciler.
const (
	MetaUserID  = "userid"
	MetaEventID = "eventoid"
	MetaPurpose = "tipo"

	PurposeRenewal    = "renew"
	PurposeMembership = "membership"
	PurposeEvent      = "evento"
)

// PaymentCommand is the decoded effect a completed checkout asks for. The
// set is closed; ApplyCommand dispatches over it exhaustively.
type PaymentCommand interface {
	paymentCommand()
}

// EventTicketCommand registers a user to an event they paid for.
type EventTicketCommand struct {
	UserID  uint
	EventID uint
}

// RenewalCommand extends an existing membership from its current expiry.
type RenewalCommand struct {
	UserID uint
}

// MembershipCommand grants a membership, renewing from the existing expiry
// when one is still in the future.
type MembershipCommand struct {
	UserID uint
}

// UnknownCommand is produced for discriminators we don't recognize; it is
// acknowledged without any state change.
type UnknownCommand struct {
	Purpose string
}

func (EventTicketCommand) paymentCommand() {}
func (RenewalCommand) paymentCommand()     {}
func (MembershipCommand) paymentCommand()  {}
func (UnknownCommand) paymentCommand()     {}

// DecodePaymentCommand turns the session metadata bag into a command. An
// event id takes precedence over the purpose discriminator. Unresolvable
// ids yield UnknownCommand so the webhook acknowledges and moves on.
func DecodePaymentCommand(metadata map[string]string) PaymentCommand {
	userID, userOK := parseID(metadata[MetaUserID])

	if rawEvent, ok := metadata[MetaEventID]; ok {
		eventID, eventOK := parseID(rawEvent)
		if !userOK || !eventOK {
			return UnknownCommand{Purpose: PurposeEvent}
		}
		return EventTicketCommand{UserID: userID, EventID: eventID}
	}

	switch metadata[MetaPurpose] {
	case PurposeRenewal:
		if !userOK {
			return UnknownCommand{Purpose: PurposeRenewal}
		}
		return RenewalCommand{UserID: userID}
	case PurposeMembership:
		if !userOK {
			return UnknownCommand{Purpose: PurposeMembership}
		}
		return MembershipCommand{UserID: userID}
	default:
		return UnknownCommand{Purpose: metadata[MetaPurpose]}
	}
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ProcessedPaymentEvent is the dedup ledger for webhook deliveries. The
// renewal branches are not naturally idempotent (each application adds a
// year), so every notification id is recorded in the same transaction as
// its effects and redeliveries short-circuit.
type ProcessedPaymentEvent struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StripeID    string    `json:"stripe_id" gorm:"size:255;unique;not null"`
	EventType   string    `json:"event_type" gorm:"size:100"`
	ProcessedAt time.Time `json:"processed_at"`
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
