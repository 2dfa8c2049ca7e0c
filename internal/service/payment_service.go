package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guildhall/guildhall-backend/internal/config"
	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/repository"
	"github.com/guildhall/guildhall-backend/pkg/payment"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService reconciles completed external charges with internal state
// and creates the checkout sessions whose metadata it later consumes. The
// webhook path must stay idempotent and order-tolerant: the transport may
// redeliver, and a notification can race an in-app action.
type PaymentService struct {
	db                *gorm.DB
	stripeService     *payment.StripeService
	userRepo          *repository.UserRepository
	eventRepo         *repository.EventRepository
	participationRepo *repository.ParticipationRepository
	processedRepo     *repository.ProcessedPaymentEventRepository
	clock             Clock
	cfg               *config.Config
	logger            *zap.Logger
}

func NewPaymentService(
	db *gorm.DB,
	stripeService *payment.StripeService,
	userRepo *repository.UserRepository,
	eventRepo *repository.EventRepository,
	participationRepo *repository.ParticipationRepository,
	processedRepo *repository.ProcessedPaymentEventRepository,
	clock Clock,
	cfg *config.Config,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		db:                db,
		stripeService:     stripeService,
		userRepo:          userRepo,
		eventRepo:         eventRepo,
		participationRepo: participationRepo,
		processedRepo:     processedRepo,
		clock:             clock,
		cfg:               cfg,
		logger:            logger,
	}
}

// HandleWebhookEvent consumes one verified Stripe event. Anything that is
// not a completed checkout is acknowledged untouched. Each notification id
// is recorded in the dedup ledger inside the same transaction as its
// effects, so a redelivery is a no-op.
func (s *PaymentService) HandleWebhookEvent(event *stripe.Event) error {
	if event.Type != "checkout.session.completed" {
		s.logger.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return err
	}

	seen, err := s.processedRepo.Seen(event.ID)
	if err != nil {
		return err
	}
	if seen {
		s.logger.Info("duplicate webhook delivery", zap.String("stripe_id", event.ID))
		return nil
	}

	cmd := models.DecodePaymentCommand(session.Metadata)

	return s.db.Transaction(func(tx *gorm.DB) error {
		record := &models.ProcessedPaymentEvent{
			StripeID:    event.ID,
			EventType:   string(event.Type),
			ProcessedAt: s.clock.Now(),
		}
		if err := s.processedRepo.WithTx(tx).Record(record); err != nil {
			return err
		}
		return s.applyCommand(tx, cmd)
	})
}

// applyCommand dispatches over the closed command set. Every branch must be
// safe when the referenced entities are missing: webhook notifications for
// unresolvable ids are dropped, not errored, since surfacing a failure
// would only make the processor retry a charge we cannot honor differently.
func (s *PaymentService) applyCommand(tx *gorm.DB, cmd models.PaymentCommand) error {
	switch c := cmd.(type) {
	case models.EventTicketCommand:
		return s.applyEventTicket(tx, c)
	case models.RenewalCommand:
		return s.applyRenewal(tx, c.UserID, true)
	case models.MembershipCommand:
		return s.applyMembership(tx, c.UserID)
	case models.UnknownCommand:
		s.logger.Info("unrecognized payment purpose", zap.String("purpose", c.Purpose))
		return nil
	default:
		return fmt.Errorf("unhandled payment command %T", cmd)
	}
}

func (s *PaymentService) applyEventTicket(tx *gorm.DB, cmd models.EventTicketCommand) error {
	users := s.userRepo.WithTx(tx)
	events := s.eventRepo.WithTx(tx)
	participations := s.participationRepo.WithTx(tx)

	user, err := users.GetByID(cmd.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("event ticket for unknown user", zap.Uint("user_id", cmd.UserID))
			return nil
		}
		return err
	}

	event, err := events.GetByID(cmd.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("event ticket for unknown event", zap.Uint("event_id", cmd.EventID))
			return nil
		}
		return err
	}

	// The charge is honored but registration to a past event is refused.
	if event.IsPast(s.clock.Now()) {
		s.logger.Warn("event ticket refused, event already took place",
			zap.Uint("user_id", cmd.UserID),
			zap.Uint("event_id", cmd.EventID))
		return nil
	}

	exists, err := participations.Exists(cmd.UserID, cmd.EventID)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("event ticket already applied",
			zap.Uint("user_id", cmd.UserID),
			zap.Uint("event_id", cmd.EventID))
		return nil
	}

	participation := &models.Participation{
		UserID:   cmd.UserID,
		EventID:  cmd.EventID,
		XPEarned: event.XPReward,
		JoinedAt: s.clock.Now(),
	}
	if err := participations.Create(participation); err != nil {
		return err
	}

	user.AddXP(event.XPReward)
	if err := users.Update(user); err != nil {
		return err
	}

	s.logger.Info("event ticket applied",
		zap.Uint("user_id", cmd.UserID),
		zap.Uint("event_id", cmd.EventID),
		zap.Int("xp_awarded", event.XPReward))
	return nil
}

func (s *PaymentService) applyRenewal(tx *gorm.DB, userID uint, fromExistingExpiry bool) error {
	users := s.userRepo.WithTx(tx)

	user, err := users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("renewal for unknown user", zap.Uint("user_id", userID))
			return nil
		}
		return err
	}

	user.RenewMembership(s.clock.Now(), fromExistingExpiry)
	if err := users.Update(user); err != nil {
		return err
	}

	s.logger.Info("membership renewal applied",
		zap.Uint("user_id", userID),
		zap.Time("expires_at", *user.MembershipExpiresAt))
	return nil
}

// applyMembership treats the payment as a renewal only when the current
// expiry is still in the future; a lapsed or absent expiry gets a fresh
// term from now.
func (s *PaymentService) applyMembership(tx *gorm.DB, userID uint) error {
	users := s.userRepo.WithTx(tx)

	user, err := users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("membership grant for unknown user", zap.Uint("user_id", userID))
			return nil
		}
		return err
	}

	now := s.clock.Now()
	fromExisting := user.MembershipExpiresAt != nil && user.MembershipExpiresAt.After(now)
	user.RenewMembership(now, fromExisting)
	if err := users.Update(user); err != nil {
		return err
	}

	s.logger.Info("membership grant applied",
		zap.Uint("user_id", userID),
		zap.Bool("renewed_from_existing", fromExisting),
		zap.Time("expires_at", *user.MembershipExpiresAt))
	return nil
}

// CreateMembershipCheckout starts a checkout for a new or lapsed
// membership (tipo=membership).
func (s *PaymentService) CreateMembershipCheckout(userID uint) (*models.CheckoutSession, error) {
	return s.createMembershipSession(userID, models.PurposeMembership, "GuildHall Annual Membership")
}

// CreateRenewalCheckout starts a checkout that always extends from the
// existing expiry (tipo=renew).
func (s *PaymentService) CreateRenewalCheckout(userID uint) (*models.CheckoutSession, error) {
	return s.createMembershipSession(userID, models.PurposeRenewal, "GuildHall Membership Renewal")
}

func (s *PaymentService) createMembershipSession(userID uint, purpose, productName string) (*models.CheckoutSession, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	session, err := s.stripeService.CreateCheckoutSession(
		user.Email,
		productName,
		"One year of event access at member terms",
		s.cfg.Membership.PriceCents,
		s.cfg.FrontendURL+"/payment/success?session_id={CHECKOUT_SESSION_ID}",
		s.cfg.FrontendURL+"/payment/cancel",
		map[string]string{
			models.MetaUserID:  fmt.Sprintf("%d", user.ID),
			models.MetaPurpose: purpose,
		},
	)
	if err != nil {
		return nil, err
	}

	return &models.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// CreateEventCheckout starts a ticket checkout for one event, with
// role-based pricing.
func (s *PaymentService) CreateEventCheckout(userID, eventID uint) (*models.CheckoutSession, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	if event.IsPast(s.clock.Now()) {
		return nil, ErrEventInPast
	}

	session, err := s.stripeService.CreateCheckoutSession(
		user.Email,
		event.Title,
		"Event ticket - GuildHall",
		TicketPriceCents(event, user.Role),
		s.cfg.FrontendURL+"/payment/success?session_id={CHECKOUT_SESSION_ID}",
		s.cfg.FrontendURL+"/payment/cancel",
		map[string]string{
			models.MetaUserID:  fmt.Sprintf("%d", user.ID),
			models.MetaEventID: fmt.Sprintf("%d", event.ID),
			models.MetaPurpose: models.PurposeEvent,
		},
	)
	if err != nil {
		return nil, err
	}

	return &models.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// TicketPriceCents applies the role discount ladder to an event's base
// price: paid tier and veterans pay 75%, organizers 50%, everyone else the
// full price.
func TicketPriceCents(event *models.Event, role models.Role) int64 {
	base := event.Price
	if base == 0 {
		if event.Category == models.CategoryRolePlaying {
			base = 20
		} else {
			base = 15
		}
	}

	cents := int64(base * 100)
	switch role {
	case models.RoleHero, models.RoleVeteran:
		cents = cents * 75 / 100
	case models.RoleOrganizer:
		cents = cents / 2
	}
	return cents
}
