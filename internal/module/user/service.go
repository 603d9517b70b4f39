package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service handles account business logic.
type Service struct {
	repo   Repository
	tokens *TokenManager
	logger *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, tokens *TokenManager, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates an account and issues a token.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, string, time.Time, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, "", time.Time{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	u := &User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", time.Time{}, ErrEmailAlreadyExists
		}
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.tokens.Generate(u)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID.String()))
	return u, token, expiresAt, nil
}

// Login verifies credentials and issues a token. The error is the same
// for a missing account and a wrong password.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*User, string, time.Time, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(u)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		s.logger.Warn("failed to record login time", zap.Error(err))
	}

	return u, token, expiresAt, nil
}

// GetProfile returns the account for the given id.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetEmail returns the registered email for a user id, or "" when the
// account does not exist. Used to resolve notification recipients.
func (s *Service) GetEmail(ctx context.Context, id uuid.UUID) string {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return u.Email
}
