package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetlease/internal/config"
	"fleetlease/internal/delivery/http/handler"
	"fleetlease/internal/infrastructure/database/postgres"
	"fleetlease/internal/logger"
	"fleetlease/internal/middleware"
	"fleetlease/internal/notification"
	"fleetlease/internal/payment"
	"fleetlease/internal/storage"
	accountUsecase "fleetlease/internal/usecase/account"
	driverUsecase "fleetlease/internal/usecase/driver"
	leaseUsecase "fleetlease/internal/usecase/lease"
	loadUsecase "fleetlease/internal/usecase/load"
)

func SetupRoutes(
	cfg *config.Config,
	db *postgres.DB,
	dispatcher *notification.Dispatcher,
	uploader storage.Uploader,
	payments payment.SessionCreator,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	accountRepository := postgres.NewAccountRepository(db)
	loadRepository := postgres.NewLoadRepository(db)
	driverRepository := postgres.NewDriverRepository(db)
	invitationRepository := postgres.NewInvitationRepository(db)
	leaseRepository := postgres.NewLeaseRepository(db)

	accountService := accountUsecase.NewService(accountRepository, &cfg.JWT)
	accountHandler := handler.NewAccountHandler(accountService)

	loadService := loadUsecase.NewService(loadRepository)

	leaseService := leaseUsecase.NewService(
		leaseRepository, loadRepository, driverRepository, accountRepository,
		dispatcher, payments, cfg.Payment.MatchFeeCents,
	)
	leaseHandler := handler.NewLeaseHandler(leaseService)
	loadHandler := handler.NewLoadHandler(loadService, leaseService)

	driverService := driverUsecase.NewService(
		driverRepository, invitationRepository, accountRepository,
		dispatcher, uploader, &cfg.JWT,
	)
	driverHandler := handler.NewDriverHandler(driverService)

	paymentHandler := handler.NewPaymentHandler(leaseService, &cfg.Payment)

	v1 := router.Group("/api/v1")
	{
		accountHandler.RegisterRoutes(v1)
		driverHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			accountHandler.RegisterProfileRoutes(protected)
			leaseHandler.RegisterRoutes(protected)
			driverHandler.RegisterSharedRoutes(protected)

			fleet := protected.Group("")
			fleet.Use(middleware.FleetOnly())
			{
				loadHandler.RegisterFleetRoutes(fleet)
				driverHandler.RegisterFleetRoutes(fleet)
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}
