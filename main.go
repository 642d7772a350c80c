package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/config"
	"github.com/kendall-kelly/restaurant-pos/controllers"
	"github.com/kendall-kelly/restaurant-pos/middleware"
	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/kendall-kelly/restaurant-pos/services"
)

func main() {
	// Basic logging
	log.Println("Starting restaurant POS gateway...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Connect to the local journal database
	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.Receipt{}, &models.Draft{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	services.InitBackendClient(cfg.BackendAPIURL, cfg.BackendTimeout)
	log.Printf("Forwarding to backend at %s", cfg.BackendAPIURL)

	publisher, err := services.InitPublisher(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("warning: status events disabled: %v", err)
		services.SetPublisher(services.NoopPublisher{})
	} else {
		defer publisher.Close()
	}

	var archive services.ReceiptArchive
	if cfg.ArchiveEnabled() {
		s3Service, err := services.InitS3Service(cfg)
		if err != nil {
			log.Printf("warning: receipt archive disabled: %v", err)
		} else {
			archive = s3Service
			log.Printf("Archiving receipts to s3://%s", cfg.AWSS3Bucket)
		}
	}
	services.InitReceiptService(db, archive)
	services.InitDraftService(db)

	router := setupRouter(cfg, authMiddleware(cfg))

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// authMiddleware validates Auth0 tokens, or falls back to development
// sessions when Auth0 is not configured (never in production, see config.Validate)
func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	if cfg.AuthEnabled() {
		return middleware.EnsureValidToken(cfg)
	}
	log.Println("warning: AUTH0_DOMAIN/AUTH0_AUDIENCE not set, using development sessions")
	return middleware.DevSession()
}

// corsConfig allows the web dashboards and the desktop shell
func corsConfig(cfg *config.Config) cors.Config {
	return cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.DevRoleHeader},
		AllowCredentials: true,
		CustomSchemas:    []string{"app://"},
		MaxAge:           12 * time.Hour,
	}
}

// setupRouter builds the gin engine with every route mounted
func setupRouter(cfg *config.Config, auth gin.HandlerFunc) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(corsConfig(cfg)))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", auth, middleware.RequireRole(middleware.RoleAdmin), databaseStatus)
	}
	controllers.RegisterRoutes(v1, cfg, auth)

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Restaurant POS gateway is running",
	})
}

// databaseStatus checks the journal database and returns its tables
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
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Works for both PostgreSQL and SQLite
	tables, err := db.Migrator().GetTables()
	if err != nil {
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
		"dialect": db.Dialector.Name(),
		"tables":  tables,
	})
}
