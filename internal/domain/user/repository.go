package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"rentalmarket/internal/database"
	"rentalmarket/internal/domain"
	"rentalmarket/internal/pkg/apperr"
)

var (
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "User not found")
	ErrEmailTaken   = apperr.New(apperr.KindInvalidState, "EMAIL_ALREADY_EXISTS", "Email is already registered")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u *User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID skips soft-deleted accounts.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// Summaries resolves ids to summaries. Missing and deleted users are absent
// from the result.
func (r *Repository) Summaries(ctx context.Context, ids []int64) (map[int64]domain.UserSummary, error) {
	out := make(map[int64]domain.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load user summaries: %w", err)
	}
	for i := range users {
		out[users[i].ID] = users[i].Summary()
	}
	return out, nil
}

// Ref resolves id into a UserRef, falling back to an unresolved ref when the
// user is gone.
func (r *Repository) Ref(ctx context.Context, id int64) (domain.UserRef, error) {
	u, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return domain.Unresolved(id), nil
	}
	if err != nil {
		return domain.UserRef{}, err
	}
	return domain.Resolved(u.Summary()), nil
}

func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&User{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RecordFailedLogin bumps the failure counter and locks the account once max
// attempts are reached. Returns the new attempt count.
func (r *Repository) RecordFailedLogin(ctx context.Context, u *User, max int, lockout time.Duration, now time.Time) (int, error) {
	attempts := u.FailedLoginAttempts + 1
	updates := map[string]any{"failed_login_attempts": attempts}
	if attempts >= max {
		updates["locked_until"] = now.Add(lockout)
	}
	if err := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
		return 0, fmt.Errorf("record failed login: %w", err)
	}
	return attempts, nil
}

func (r *Repository) ResetFailedLogins(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}).Error
}
