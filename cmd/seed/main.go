package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"rentalmarket/internal/bootstrap"
	"rentalmarket/internal/domain"
	"rentalmarket/internal/domain/asset"
	"rentalmarket/internal/domain/auth"
	"rentalmarket/internal/domain/booking"
	"rentalmarket/internal/domain/settings"
	"rentalmarket/internal/domain/user"
	"rentalmarket/internal/logger"
)

type seedUser struct {
	email    string
	password string
	name     string
	role     domain.UserRole
}

var users = []seedUser{
	{"admin@rentalmarket.dev", "admin123", "Administrator", domain.RoleAdmin},
	{"olga@rentalmarket.dev", "owner123", "Olga Owner", domain.RoleOwner},
	{"omar@rentalmarket.dev", "owner123", "Omar Owner", domain.RoleOwner},
	{"rita@rentalmarket.dev", "renter123", "Rita Renter", domain.RoleRenter},
	{"ravi@rentalmarket.dev", "renter123", "Ravi Renter", domain.RoleRenter},
}

var assets = []struct {
	owner      int
	name       string
	category   string
	priceCents int64
}{
	{1, "Canon EOS R6 kit", "photo", 4500},
	{1, "DJI Mini 4 Pro", "drones", 6000},
	{2, "Two-person kayak", "outdoor", 3500},
	{2, "Camping tent (4p)", "outdoor", 2000},
}

func main() {
	cfg, err := bootstrap.Config()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	db, err := bootstrap.Database(cfg)
	if err != nil {
		logger.Error("database setup failed", "error", err)
		os.Exit(1)
	}

	if err := seed(context.Background(), db, cfg.Booking.DefaultMaxRequestsPerUser); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	logger.Info("seed completed")
}

func seed(ctx context.Context, db *gorm.DB, maxRequests int) error {
	logger.Info("cleaning old data")
	for _, table := range []string{
		"notifications", "disputes", "asset_conditions", "messages", "conversations",
		"reviews", "payment_events", "bookings", "assets", "system_settings", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}

	if _, err := settings.NewRepository(db, settings.Settings{}).Save(ctx, settings.Settings{
		MaxRequestsPerUser: maxRequests,
		Currency:           "USD",
	}); err != nil {
		return err
	}

	userRepo := user.NewRepository(db)
	created := make([]*user.User, 0, len(users))
	for _, su := range users {
		hash, err := auth.HashPassword(su.password)
		if err != nil {
			return err
		}
		u := &user.User{Email: su.email, PasswordHash: hash, Name: su.name, Role: su.role}
		if err := userRepo.Create(ctx, u); err != nil {
			return fmt.Errorf("create user %s: %w", su.email, err)
		}
		created = append(created, u)
		logger.Info("user created", "email", su.email, "password", su.password, "role", su.role)
	}

	assetRepo := asset.NewRepository(db)
	var first *asset.Asset
	for _, sa := range assets {
		a := &asset.Asset{
			OwnerID:    created[sa.owner].ID,
			Name:       sa.name,
			Category:   sa.category,
			PriceCents: sa.priceCents,
			IsActive:   true,
		}
		if err := assetRepo.Create(ctx, a); err != nil {
			return fmt.Errorf("create asset %s: %w", sa.name, err)
		}
		if first == nil {
			first = a
		}
	}

	start := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	b := &booking.Booking{
		RenterID:   created[3].ID,
		OwnerID:    first.OwnerID,
		AssetID:    first.ID,
		AssetName:  first.Name,
		PriceCents: first.PriceCents,
		Category:   first.Category,
		StartDate:  start,
		EndDate:    start.Add(72 * time.Hour),
		Status:     booking.StatusPending,
		Notes:      "Seeded request",
	}
	if err := booking.NewBookingRepository(db).Create(ctx, b); err != nil {
		return err
	}
	logger.Info("sample booking created", "booking_id", b.ID)
	return nil
}
