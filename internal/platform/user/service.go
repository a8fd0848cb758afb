package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kislikjeka/finpanel/pkg/logger"
)

// Service handles sign-in against the configured user directory
type Service struct {
	repo   Repository
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new user service
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log.WithField("component", "user"),
		now:    time.Now,
	}
}

// Login authenticates a user with email and password.
// Unknown emails and wrong passwords both return ErrInvalidPassword.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	candidate := User{Email: email}
	if err := candidate.ValidateEmail(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := u.CheckPassword(password); err != nil {
		return nil, err
	}

	now := s.now()
	u.UpdateLastLogin(now)
	if err := s.repo.TouchLogin(ctx, u.Email, now); err != nil {
		s.logger.Warn("failed to record last login", "email", u.Email, "error", err)
	}

	return u, nil
}
