package user

import (
	"time"

	"gorm.io/gorm"

	"rentalmarket/internal/domain"
)

type User struct {
	ID                  int64           `gorm:"primaryKey" json:"id"`
	Email               string          `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash        string          `gorm:"not null" json:"-"`
	Name                string          `gorm:"size:255;not null" json:"name"`
	AvatarURL           string          `json:"avatar_url,omitempty"`
	Role                domain.UserRole `gorm:"size:20;not null" json:"role"`
	FailedLoginAttempts int             `gorm:"not null;default:0" json:"-"`
	LockedUntil         *time.Time      `json:"-"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	DeletedAt           gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) Summary() domain.UserSummary {
	return domain.UserSummary{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL, Role: u.Role}
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }

// Models lists the tables owned by this package.
func Models() []any { return []any{&User{}} }
