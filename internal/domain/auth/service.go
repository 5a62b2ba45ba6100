package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentalmarket/internal/domain"
	"rentalmarket/internal/domain/user"
	"rentalmarket/internal/logger"
	"rentalmarket/internal/pkg/jwt"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

type Service struct {
	users *user.Repository
	jwt   *jwt.Service
	now   func() time.Time
}

func NewService(users *user.Repository, jwtService *jwt.Service) *Service {
	return &Service{users: users, jwt: jwtService, now: time.Now}
}

// Register creates an owner or renter account and signs it in. Admin
// accounts are provisioned out of band.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role := domain.UserRole(req.Role)
	if role != domain.RoleOwner && role != domain.RoleRenter {
		return nil, ErrRoleNotAllowed
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "user registered", "user_id", u.ID, "role", u.Role)
	return s.issue(u)
}

// Login checks the password and locks the account after repeated failures.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if u.LockedUntil != nil && u.LockedUntil.After(now) {
		return nil, ErrAccountLocked
	}

	ok, err := passwordMatches(u.PasswordHash, req.Password)
	if err != nil {
		logger.ErrorContext(ctx, "stored password hash unusable", "user_id", u.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		attempts, err := s.users.RecordFailedLogin(ctx, u, maxFailedLoginAttempts, lockoutDuration, now)
		if err != nil {
			return nil, err
		}
		if attempts >= maxFailedLoginAttempts {
			logger.WarnContext(ctx, "account locked", "user_id", u.ID, "attempts", attempts)
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if u.FailedLoginAttempts > 0 || u.LockedUntil != nil {
		if err := s.users.ResetFailedLogins(ctx, u.ID); err != nil {
			return nil, err
		}
		u.FailedLoginAttempts = 0
		u.LockedUntil = nil
	}
	return s.issue(u)
}

func (s *Service) issue(u *user.User) (*AuthResponse, error) {
	token, err := s.jwt.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		User:        u,
		AccessToken: token,
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
	}, nil
}
