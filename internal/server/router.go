// Package server assembles repositories, services and handlers into the HTTP
// engine shared by cmd/api and the end-to-end tests.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rentalmarket/internal/config"
	"rentalmarket/internal/domain"
	"rentalmarket/internal/domain/asset"
	"rentalmarket/internal/domain/auth"
	"rentalmarket/internal/domain/booking"
	"rentalmarket/internal/domain/chat"
	"rentalmarket/internal/domain/condition"
	"rentalmarket/internal/domain/dispute"
	"rentalmarket/internal/domain/notification"
	"rentalmarket/internal/domain/payment"
	"rentalmarket/internal/domain/review"
	"rentalmarket/internal/domain/settings"
	"rentalmarket/internal/domain/user"
	"rentalmarket/internal/middleware"
	"rentalmarket/internal/pkg/jwt"
	"rentalmarket/internal/pkg/lock"
	"rentalmarket/internal/storage"
)

// Models lists every table the API needs migrated.
func Models() []any {
	var out []any
	for _, group := range [][]any{
		user.Models(),
		asset.Models(),
		settings.Models(),
		review.Models(),
		booking.Models(),
		chat.Models(),
		condition.Models(),
		dispute.Models(),
		notification.Models(),
	} {
		out = append(out, group...)
	}
	return out
}

type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	JWT     *jwt.Service
	Storage storage.Storage
	Locker  lock.Locker
}

// App exposes the engine plus the services background jobs reuse.
type App struct {
	Router        *gin.Engine
	Bookings      *booking.Service
	Notifications *notification.Service
}

func New(deps Deps) *App {
	cfg := deps.Config
	if deps.Locker == nil {
		deps.Locker = lock.NopLocker{}
	}

	userRepo := user.NewRepository(deps.DB)
	assetRepo := asset.NewRepository(deps.DB)
	reviewRepo := review.NewRepository(deps.DB)
	settingsRepo := settings.NewRepository(deps.DB, settings.Settings{
		MaxRequestsPerUser: cfg.Booking.DefaultMaxRequestsPerUser,
	})
	bookingRepo := booking.NewBookingRepository(deps.DB)

	notificationService := notification.NewService(notification.NewRepository(deps.DB))
	authService := auth.NewService(userRepo, deps.JWT)
	bookingService := booking.NewService(bookingRepo, assetRepo, userRepo, settingsRepo, notificationService, deps.Locker)
	chatService := chat.NewService(chat.NewRepository(deps.DB), assetRepo, userRepo, deps.Locker)
	conditionService := condition.NewService(condition.NewRepository(deps.DB), bookingRepo, deps.Storage)
	disputeService := dispute.NewService(dispute.NewRepository(deps.DB), bookingRepo, notificationService)
	paymentService := payment.NewService(bookingService, cfg.Payment.WebhookSecret, cfg.Payment.SignatureTolerance)

	authHandler := auth.NewHandler(authService)
	assetHandler := asset.NewHandler(assetRepo)
	reviewHandler := review.NewHandler(reviewRepo)
	settingsHandler := settings.NewHandler(settingsRepo)
	bookingHandler := booking.NewHandler(bookingService)
	chatHandler := chat.NewHandler(chatService)
	conditionHandler := condition.NewHandler(conditionService)
	disputeHandler := dispute.NewHandler(disputeService)
	notificationHandler := notification.NewHandler(notificationService)
	paymentHandler := payment.NewHandler(paymentService)

	if config.IsProdLike(cfg.App.Env) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.ErrorLogger(), middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if local, ok := deps.Storage.(*storage.LocalStorage); ok && cfg.Storage.PublicBaseURL != "" {
		r.Static(cfg.Storage.PublicBaseURL, local.BaseDir())
	}

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		assetHandler.RegisterPublicRoutes(v1)
		reviewHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(deps.JWT))
		{
			assetHandler.RegisterRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			conditionHandler.RegisterRoutes(protected)
			disputeHandler.RegisterRoutes(protected)
			chat.RegisterRoutes(protected, chatHandler)
			notificationHandler.RegisterRoutes(protected)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(deps.JWT), middleware.RequireRole(domain.RoleAdmin))
		{
			disputeHandler.RegisterAdminRoutes(admin)
			settingsHandler.RegisterAdminRoutes(admin)
		}
	}

	return &App{Router: r, Bookings: bookingService, Notifications: notificationService}
}
