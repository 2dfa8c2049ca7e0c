package config

import (
	"os"
	"strconv"
)

type StripeConfig struct {
	SecretKey     string
	PublicKey     string
	WebhookSecret string
}

type MailConfig struct {
	ResendAPIKey string
	FromAddress  string
	FromName     string
}

type MembershipConfig struct {
	// Annual membership price in cents.
	PriceCents int64
	// KeepHistoryOnCancel preserves past participations (and the XP earned
	// from them) when a member cancels. When false, all participation rows
	// are purged, matching the legacy behavior.
	KeepHistoryOnCancel bool
}

type ReminderConfig struct {
	// IANA zone the tomorrow-window is computed in.
	Timezone string
	// Wall-clock hour of the daily sweep.
	Hour int
}

type Config struct {
	Port        string
	DatabaseURL string
	FrontendURL string

	Stripe     StripeConfig
	Mail       MailConfig
	Membership MembershipConfig
	Reminder   ReminderConfig
}

func LoadConfig() *Config {
	cfg := &Config{
		Port:        envOr("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
	}

	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Stripe.PublicKey = os.Getenv("STRIPE_PUBLIC_KEY")
	cfg.Stripe.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")

	cfg.Mail.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.Mail.FromAddress = os.Getenv("EMAIL_FROM_ADDRESS")
	cfg.Mail.FromName = envOr("EMAIL_FROM_NAME", "GuildHall")

	cfg.Membership.PriceCents = envOrInt64("MEMBERSHIP_PRICE_CENTS", 2000)
	cfg.Membership.KeepHistoryOnCancel = envOr("MEMBERSHIP_CANCEL_KEEP_HISTORY", "true") == "true"

	cfg.Reminder.Timezone = envOr("REMINDER_TIMEZONE", "Europe/Rome")
	cfg.Reminder.Hour = int(envOrInt64("REMINDER_HOUR", 9))

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
