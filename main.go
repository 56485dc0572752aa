package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/petcode/petcode-api/config"
	"github.com/petcode/petcode-api/controllers"
	"github.com/petcode/petcode-api/middleware"
	"github.com/petcode/petcode-api/models"
	"github.com/petcode/petcode-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting PetCode QR Registry API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.Client{}, &models.PetProfile{}, &models.QROrder{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Repair records created before the lost-flag and random-slug schema
	migrator := services.NewMigrationService(db)
	if repaired, err := migrator.BackfillPetDefaults(); err != nil {
		log.Printf("Warning: pet defaults backfill failed: %v", err)
	} else if repaired > 0 {
		log.Printf("Backfilled defaults on %d pet profile fields", repaired)
	}
	if migrated, err := migrator.RegenerateLegacySlugs(); err != nil {
		log.Printf("Warning: legacy slug migration failed: %v", err)
	} else if migrated > 0 {
		log.Printf("Regenerated %d legacy profile slugs", migrated)
	}

	// Initialize photo storage: S3 when a bucket is configured, local
	// disk otherwise
	if cfg.HasS3Storage() {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
		log.Printf("Photo storage: S3 bucket %s", cfg.AWSS3Bucket)
	} else {
		services.SetImageService(services.NewLocalImageService(""))
		log.Println("Photo storage: local uploads directory (no S3 bucket configured)")
	}

	// Initialize Gin router
	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires middleware and routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// The public profile page is consumed cross-origin by the web frontend
	corsConfig := cors.DefaultConfig()
	if cfg.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.AllowedOrigins}
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	authRequired := middleware.EnsureValidToken(cfg)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Public emergency profile (QR code target) and locally stored photos
		v1.GET("/public/profiles/:slug", controllers.GetPublicProfile)
		v1.GET("/uploads/:filename", controllers.GetUploadedImage)

		// Owner routes
		v1.GET("/clients/me", authRequired, controllers.GetMyClient)
		v1.PUT("/clients/me", authRequired, controllers.UpdateMyClient)
		v1.POST("/pets", authRequired, controllers.CreatePet)
		v1.GET("/pets", authRequired, controllers.GetMyPets)
		v1.PUT("/pets/:id", authRequired, controllers.UpdatePet)
		v1.PATCH("/pets/:id/lost", authRequired, controllers.ToggleLostStatus)
		v1.GET("/orders", authRequired, controllers.GetMyOrders)
		v1.PUT("/orders/:id/address", authRequired, controllers.UpdateOrderAddress)

		// Admin fulfillment dashboard
		v1.GET("/admin/orders", authRequired, controllers.GetAllOrders)
		v1.PUT("/admin/orders/:id/status", authRequired, controllers.UpdateOrderStatus)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "PetCode QR Registry API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
