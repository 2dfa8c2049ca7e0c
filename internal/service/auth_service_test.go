package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/pkg/bcrypt"
)

func (f *fixture) authService() *AuthService {
	return NewAuthService(f.userRepo, f.sink, f.logger)
}

func validRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		Nickname:        "dice_roller",
		FirstName:       "Marco",
		LastName:        "Bianchi",
		Email:           "marco@example.com",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
	}
}

func TestRegister(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("creates an unpaid unverified account", func(t *testing.T) {
		f := newFixture(t)
		svc := f.authService()

		resp, violations, err := svc.Register(validRegistration())
		require.NoError(t, err)
		require.Empty(t, violations)
		require.NotNil(t, resp)
		assert.NotEmpty(t, resp.Token)

		stored, err := f.userRepo.GetByEmail("marco@example.com")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdventurer, stored.Role)
		assert.False(t, stored.HasPaid)
		assert.False(t, stored.EmailVerified)
		assert.NotEmpty(t, stored.VerifyToken)
		assert.Equal(t, models.PaymentPending, stored.PaymentStatus)
	})

	t.Run("hero registration still starts unpaid", func(t *testing.T) {
		f := newFixture(t)
		svc := f.authService()

		req := validRegistration()
		req.Role = models.RoleHero
		_, violations, err := svc.Register(req)
		require.NoError(t, err)
		require.Empty(t, violations)

		stored, err := f.userRepo.GetByEmail("marco@example.com")
		require.NoError(t, err)
		assert.Equal(t, models.RoleHero, stored.Role)
		assert.False(t, stored.HasPaid)
	})

	t.Run("staff roles cannot be registered", func(t *testing.T) {
		f := newFixture(t)
		svc := f.authService()

		req := validRegistration()
		req.Role = models.RoleFounder
		_, violations, err := svc.Register(req)
		require.NoError(t, err)
		assert.Contains(t, violations, "this role is not available for registration")
	})

	t.Run("all field violations come back together", func(t *testing.T) {
		f := newFixture(t)
		svc := f.authService()

		_, violations, err := svc.Register(models.RegisterRequest{
			Nickname:        "_x",
			FirstName:       "",
			LastName:        "Bianchi",
			Email:           "nope",
			Password:        "weak",
			ConfirmPassword: "different",
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(violations), 4)
	})

	t.Run("email is normalized before storage", func(t *testing.T) {
		f := newFixture(t)
		svc := f.authService()

		req := validRegistration()
		req.Email = "  Marco@Example.COM "
		_, violations, err := svc.Register(req)
		require.NoError(t, err)
		require.Empty(t, violations)

		_, err = f.userRepo.GetByEmail("marco@example.com")
		assert.NoError(t, err)
	})

	t.Run("duplicate nickname and email are rejected", func(t *testing.T) {
		f := newFixture(t)
		svc := f.authService()

		_, violations, err := svc.Register(validRegistration())
		require.NoError(t, err)
		require.Empty(t, violations)

		req := validRegistration()
		req.Email = "other@example.com"
		_, _, err = svc.Register(req)
		assert.ErrorIs(t, err, ErrNicknameTaken)

		req = validRegistration()
		req.Nickname = "other_nick"
		_, _, err = svc.Register(req)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	seedUser := func(t *testing.T, f *fixture, verified, active bool) *models.User {
		hash, err := bcrypt.HashPassword("Str0ng!pass")
		require.NoError(t, err)
		user := f.createUser(t, &models.User{
			Email: "login@example.com", PasswordHash: hash, EmailVerified: verified,
		})
		if !active {
			user.Active = false
			require.NoError(t, f.userRepo.Update(user))
		}
		return user
	}

	t.Run("valid credentials return a token", func(t *testing.T) {
		f := newFixture(t)
		seedUser(t, f, true, true)

		resp, err := f.authService().Login(models.LoginRequest{
			Email: "login@example.com", Password: "Str0ng!pass",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		f := newFixture(t)
		seedUser(t, f, true, true)

		_, err := f.authService().Login(models.LoginRequest{
			Email: "login@example.com", Password: "Wr0ng!pass",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email fails the same way", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.authService().Login(models.LoginRequest{
			Email: "ghost@example.com", Password: "Str0ng!pass",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unverified email is refused", func(t *testing.T) {
		f := newFixture(t)
		seedUser(t, f, false, true)

		_, err := f.authService().Login(models.LoginRequest{
			Email: "login@example.com", Password: "Str0ng!pass",
		})
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})

	t.Run("inactive account is refused", func(t *testing.T) {
		f := newFixture(t)
		seedUser(t, f, true, false)

		_, err := f.authService().Login(models.LoginRequest{
			Email: "login@example.com", Password: "Str0ng!pass",
		})
		assert.ErrorIs(t, err, ErrAccountInactive)
	})
}

func TestVerifyEmail(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("marks verified and burns the token", func(t *testing.T) {
		f := newFixture(t)
		svc := f.authService()

		_, violations, err := svc.Register(validRegistration())
		require.NoError(t, err)
		require.Empty(t, violations)

		stored, err := f.userRepo.GetByEmail("marco@example.com")
		require.NoError(t, err)

		require.NoError(t, svc.VerifyEmail(stored.VerifyToken))

		stored, err = f.userRepo.GetByEmail("marco@example.com")
		require.NoError(t, err)
		assert.True(t, stored.EmailVerified)
		assert.Empty(t, stored.VerifyToken)
	})

	t.Run("unknown token fails", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.authService().VerifyEmail("bogus"), ErrInvalidToken)
	})
}
