package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/glowbook/booking-api/internal/audit"
	"github.com/glowbook/booking-api/internal/cache"
	"github.com/glowbook/booking-api/internal/config"
	"github.com/glowbook/booking-api/internal/handlers"
	infraRepo "github.com/glowbook/booking-api/internal/infra/repository"
	"github.com/glowbook/booking-api/internal/media"
	"github.com/glowbook/booking-api/internal/middleware"
	"github.com/glowbook/booking-api/internal/payments"
	ucBooking "github.com/glowbook/booking-api/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	availabilityCache := cache.NewAvailabilityCache(
		cfg.RedisAddr,
		cfg.RedisPassword,
		cfg.RedisDB,
	)

	uploader := media.NewUploader(cfg)

	mp, err := payments.NewMercadoPago(cfg.MercadoPagoAccessToken)
	if err != nil {
		log.Fatalf("failed to init mercado pago client: %v", err)
	}

	// ======================================================
	// USE CASES — BOOKINGS
	// ======================================================
	requestBookingUC := ucBooking.NewRequestBooking(
		bookingRepo,
		auditDispatcher,
	)

	availabilityUC := ucBooking.NewGetAvailability(bookingRepo)

	cancelBookingUC := ucBooking.NewCancelBooking(
		bookingRepo,
		auditDispatcher,
	)

	updateStatusUC := ucBooking.NewUpdateBookingStatus(
		bookingRepo,
		auditDispatcher,
	)

	scheduleUC := ucBooking.NewListSchedule(bookingRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	specialistHandler := handlers.NewSpecialistHandler(db)
	portfolioHandler := handlers.NewPortfolioHandler(db, uploader)

	bookingHandler := handlers.NewBookingHandler(
		db,
		requestBookingUC,
		availabilityUC,
		cancelBookingUC,
		updateStatusUC,
		scheduleUC,
		availabilityCache,
		mp,
	)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/specialists", specialistHandler.List)
		api.GET("/specialists/:id", specialistHandler.Get)
		api.GET("/specialists/:id/availability", bookingHandler.Availability)
		api.GET("/services", specialistHandler.ListServices)

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			// customer side
			customer := secured.Group("/")
			customer.Use(middleware.RequireRole(middleware.RoleCustomer))
			{
				customer.POST("/appointments", bookingHandler.Create)
				customer.GET("/me/appointments", bookingHandler.ListMine)
				customer.POST("/appointments/:id/cancel", bookingHandler.Cancel)
				customer.POST("/appointments/:id/checkout", bookingHandler.Checkout)
			}

			// specialist side
			specialist := secured.Group("/")
			specialist.Use(middleware.RequireRole(middleware.RoleSpecialist))
			{
				specialist.PATCH("/me/specialist", specialistHandler.UpdateMe)
				specialist.POST("/me/specialist/portfolio", portfolioHandler.Upload)
				specialist.POST("/me/services", specialistHandler.CreateService)
				specialist.GET("/me/schedule", bookingHandler.Schedule)
				specialist.PATCH("/appointments/:id/status", bookingHandler.UpdateStatus)
			}
		}
	}
}
