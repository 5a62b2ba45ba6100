// Package settings stores the single row of system-wide switches consulted by
// booking creation.
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const singletonID = 1

type Settings struct {
	ID                 int64     `gorm:"primaryKey" json:"-"`
	MaintenanceMode    bool      `gorm:"not null" json:"maintenance_mode"`
	MaxRequestsPerUser int       `gorm:"not null" json:"max_requests_per_user"`
	Currency           string    `gorm:"size:3;not null" json:"currency"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Settings) TableName() string { return "system_settings" }

func Models() []any { return []any{&Settings{}} }

// Provider supplies the settings in force for one operation.
type Provider interface {
	Current(ctx context.Context) (Settings, error)
}

type Repository struct {
	db       *gorm.DB
	defaults Settings
}

func NewRepository(db *gorm.DB, defaults Settings) *Repository {
	if defaults.Currency == "" {
		defaults.Currency = "USD"
	}
	return &Repository{db: db, defaults: defaults}
}

// Current reads the stored row, falling back to the defaults when none exists.
func (r *Repository) Current(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.db.WithContext(ctx).First(&s, singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.defaults, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

func (r *Repository) Save(ctx context.Context, s Settings) (Settings, error) {
	s.ID = singletonID
	s.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"maintenance_mode", "max_requests_per_user", "currency", "updated_at"}),
	}).Create(&s).Error
	if err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return s, nil
}
