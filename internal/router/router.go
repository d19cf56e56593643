// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ipforge/ipforge-backend/internal/config"
	"github.com/ipforge/ipforge-backend/internal/handlers"
	"github.com/ipforge/ipforge-backend/internal/middleware"
	"github.com/ipforge/ipforge-backend/internal/services"
	"github.com/ipforge/ipforge-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	eventService := services.NewEventService(db)
	chainService := services.NewNodeChainService(cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg)
	registryService := services.NewRegistryService(db, chainService, eventService, cfg)
	licenseService := services.NewLicenseService(db, eventService)
	escrowService := services.NewEscrowService(db, chainService, eventService)
	depositService := services.NewDepositService(db, cfg, eventService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	collectionHandler := handlers.NewCollectionHandler(registryService)
	ipAssetHandler := handlers.NewIPAssetHandler(registryService, storageService)
	licenseHandler := handlers.NewLicenseHandler(licenseService)
	escrowHandler := handlers.NewEscrowHandler(escrowService, eventService)
	paymentHandler := handlers.NewPaymentHandler(depositService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.Default())
	r.Use(middleware.APIRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Collection routes
		collections := v1.Group("/collections")
		{
			collections.GET("/:address", middleware.OptionalAuth(), collectionHandler.GetCollection)
			collections.POST("", middleware.AuthRequired(), collectionHandler.CreateCollection)
		}

		// IP asset routes. Reads are public; a presented token still
		// attaches the caller identity for the request log.
		ipAssets := v1.Group("/ip-assets")
		{
			reads := ipAssets.Group("")
			reads.Use(middleware.OptionalAuth())
			{
				reads.GET("", ipAssetHandler.GetAssets)
				reads.GET("/:id", ipAssetHandler.GetAsset)
				reads.GET("/:id/licenses", licenseHandler.GetAssetOffers)
			}

			protected := ipAssets.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", ipAssetHandler.RegisterAsset)
				protected.POST("/upload", middleware.UploadRateLimit(), ipAssetHandler.UploadContent)
			}
		}

		// License routes
		licenses := v1.Group("/licenses")
		{
			licenses.GET("/:id", middleware.OptionalAuth(), licenseHandler.GetOffer)

			protected := licenses.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", licenseHandler.OfferLicense)
				protected.POST("/:id/accept", licenseHandler.AcceptLicense)
			}
		}

		// Escrow routes
		escrow := v1.Group("/escrow")
		escrow.Use(middleware.AuthRequired())
		{
			escrow.GET("/balance", escrowHandler.GetBalance)
			escrow.POST("/withdraw", escrowHandler.Withdraw)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/deposits", paymentHandler.CreateDeposit)
			payments.POST("/deposits/confirm", paymentHandler.ConfirmDeposit)
			payments.GET("/balance", paymentHandler.GetDepositBalance)
		}

		// Event feed
		v1.GET("/events", middleware.OptionalAuth(), escrowHandler.GetEvents)
	}

	return r
}
