// Package auth implements registration, login, and email verification.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/interfaces"
	"github.com/foliohq/folio/internal/models"
)

var (
	// ErrInvalidCode means the verification code is absent, expired, or
	// does not match.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrDuplicateUser means the email is already registered.
	ErrDuplicateUser = errors.New("email already registered")

	// ErrInvalidCredentials covers unknown email and wrong password
	// equally, so login failures do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const bcryptCost = 10

// Service implements the OTP-verified registration and login flows.
type Service struct {
	store      interfaces.Store
	mailer     interfaces.EmailSender
	logger     *common.Logger
	codeExpiry time.Duration
	now        func() time.Time
	genCode    func() string
}

// NewService creates an auth service.
func NewService(store interfaces.Store, mailer interfaces.EmailSender, logger *common.Logger, codeExpiry time.Duration) *Service {
	return &Service{
		store:      store,
		mailer:     mailer,
		logger:     logger,
		codeExpiry: codeExpiry,
		now:        time.Now,
		genCode:    randomCode,
	}
}

// randomCode returns a 6-digit numeric code, zero-padded.
func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failure means the process is in serious trouble;
		// a time-derived code keeps the flow alive.
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// RequestCode generates and mails a verification code, overwriting any
// prior pending code for the email.
func (s *Service) RequestCode(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	code := s.genCode()
	otp := &models.OTPRecord{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(s.codeExpiry),
	}
	if err := s.store.SaveOTP(ctx, otp); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	if err := s.mailer.SendCode(ctx, email, code); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}

	s.logger.Info().Str("email", email).Msg("Verification code sent")
	return nil
}

// Register verifies the code, then creates the user with a bcrypt
// password hash and the given initial portfolio (nil means empty). The
// code is consumed on success.
func (s *Service) Register(ctx context.Context, email, password, code string, initial *models.Portfolio) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrInvalidCredentials
	}

	ok, err := s.store.VerifyOTP(ctx, email, code)
	if err != nil {
		return nil, fmt.Errorf("verify code: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	if _, err := s.store.FindUser(ctx, email); err == nil {
		return nil, ErrDuplicateUser
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if initial == nil {
		initial = models.NewPortfolio()
	}
	if err := s.store.CreateUser(ctx, user, initial); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("email", email).Msg("User registered")
	return user, nil
}

// Login checks the password against the stored bcrypt hash. Unknown
// email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.FindUser(ctx, email)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("invalid email address")
	}
	return email, nil
}
