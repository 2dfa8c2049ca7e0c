package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestDecodePaymentCommand(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		want     PaymentCommand
	}{
		{
			"event ticket",
			map[string]string{MetaUserID: "7", MetaEventID: "3", MetaPurpose: PurposeEvent},
			EventTicketCommand{UserID: 7, EventID: 3},
		},
		{
			"event id wins over the purpose discriminator",
			map[string]string{MetaUserID: "7", MetaEventID: "3", MetaPurpose: PurposeRenewal},
			EventTicketCommand{UserID: 7, EventID: 3},
		},
		{
			"renewal",
			map[string]string{MetaUserID: "7", MetaPurpose: PurposeRenewal},
			RenewalCommand{UserID: 7},
		},
		{
			"membership",
			map[string]string{MetaUserID: "7", MetaPurpose: PurposeMembership},
			MembershipCommand{UserID: 7},
		},
		{
			"unknown purpose",
			map[string]string{MetaUserID: "7", MetaPurpose: "donation"},
			UnknownCommand{Purpose: "donation"},
		},
		{
			"missing purpose",
			map[string]string{MetaUserID: "7"},
			UnknownCommand{Purpose: ""},
		},
		{
			"empty metadata",
			map[string]string{},
			UnknownCommand{Purpose: ""},
		},
		{
			"unparseable event id",
			map[string]string{MetaUserID: "7", MetaEventID: "abc"},
			UnknownCommand{Purpose: PurposeEvent},
		},
		{
			"zero user id on renewal",
			map[string]string{MetaUserID: "0", MetaPurpose: PurposeRenewal},
			UnknownCommand{Purpose: PurposeRenewal},
		},
		{
			"missing user id on membership",
			map[string]string{MetaPurpose: PurposeMembership},
			UnknownCommand{Purpose: PurposeMembership},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodePaymentCommand(tt.metadata))
		})
	}
}

func TestRenewMembership(t *testing.T) {
	now := mustParse(t, "2025-06-01T12:00:00Z")

	t.Run("fresh term from now", func(t *testing.T) {
		u := &User{Role: RoleAdventurer}
		u.RenewMembership(now, false)

		assert.True(t, u.HasPaid)
		assert.Equal(t, PaymentCompleted, u.PaymentStatus)
		assert.Equal(t, RoleHero, u.Role)
		assert.Equal(t, now.Add(MembershipTerm), *u.MembershipExpiresAt)
	})

	t.Run("extension stacks on the stored expiry", func(t *testing.T) {
		expiry := now.AddDate(0, 2, 0)
		u := &User{Role: RoleHero, MembershipExpiresAt: &expiry}
		u.RenewMembership(now, true)

		assert.Equal(t, expiry.Add(MembershipTerm), *u.MembershipExpiresAt)
	})

	t.Run("extension without a stored expiry falls back to now", func(t *testing.T) {
		u := &User{Role: RoleHero}
		u.RenewMembership(now, true)

		assert.Equal(t, now.Add(MembershipTerm), *u.MembershipExpiresAt)
	})
}
