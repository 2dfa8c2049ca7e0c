package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/repository"
	"github.com/guildhall/guildhall-backend/pkg/bcrypt"
	jwtPkg "github.com/guildhall/guildhall-backend/pkg/jwt"
	"github.com/guildhall/guildhall-backend/pkg/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo *repository.UserRepository
	sink     NotificationSink
	logger   *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, sink NotificationSink, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sink:     sink,
		logger:   logger,
	}
}

// Register creates an account. All field validators run and their
// violations are returned together; the account is only created when the
// list is empty. New accounts start unpaid and pending regardless of the
// requested role - payment flips them through the webhook.
func (s *AuthService) Register(req models.RegisterRequest) (*models.AuthResponse, []string, error) {
	req.Nickname = strings.TrimSpace(req.Nickname)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var violations []string
	violations = append(violations, validation.Nickname(req.Nickname)...)
	violations = append(violations, validation.PersonName(req.FirstName, "first name")...)
	violations = append(violations, validation.PersonName(req.LastName, "last name")...)
	violations = append(violations, validation.Email(req.Email)...)
	violations = append(violations, validation.Password(req.Password)...)
	violations = append(violations, validation.PasswordMatch(req.Password, req.ConfirmPassword)...)

	if req.Role == "" {
		req.Role = models.RoleAdventurer
	}
	if !req.Role.IsRegisterable() {
		violations = append(violations, "this role is not available for registration")
	}

	if len(violations) > 0 {
		return nil, violations, nil
	}

	if taken, err := s.userRepo.NicknameExists(req.Nickname); err != nil {
		return nil, nil, err
	} else if taken {
		return nil, nil, ErrNicknameTaken
	}
	if taken, err := s.userRepo.EmailExists(req.Email); err != nil {
		return nil, nil, err
	} else if taken {
		return nil, nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	verifyToken, err := generateVerifyToken()
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Nickname:      req.Nickname,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PasswordHash:  hashedPassword,
		Role:          req.Role,
		PaymentStatus: models.PaymentPending,
		VerifyToken:   verifyToken,
		Active:        true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	go s.sink.SendVerification(user.Email, user.FirstName, verifyToken)
	go s.sink.SendWelcome(user.Email, user.FirstName)

	token, err := jwtPkg.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return &models.AuthResponse{Token: token, User: *user}, nil, nil
}

func (s *AuthService) Login(req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrAccountInactive
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	token, err := jwtPkg.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: token, User: *user}, nil
}

// VerifyEmail marks the account verified and invalidates the token.
func (s *AuthService) VerifyEmail(token string) error {
	user, err := s.userRepo.GetByVerifyToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	user.EmailVerified = true
	user.VerifyToken = ""
	return s.userRepo.Update(user)
}

func generateVerifyToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
