package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/ndudarev/carpool-backend/internal/config"
	"github.com/ndudarev/carpool-backend/internal/database"
	"github.com/ndudarev/carpool-backend/internal/handlers"
	"github.com/ndudarev/carpool-backend/internal/middleware"
	"github.com/ndudarev/carpool-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis (refresh token allowlist)
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	r := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Locally stored uploads are served by the API itself
	if dir := services.LocalUploadDir(); dir != "" {
		r.Static("/uploads", dir)
	}

	RegisterRoutes(r, db, cfg, hub)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// RegisterRoutes mounts the API on the router
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, hub *services.Hub) {
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/access-token", handlers.Login(db, cfg))
			auth.POST("/refresh-token", handlers.RefreshToken(db, cfg))
		}
		api.POST("/users/register", handlers.Register(db))

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/me", handlers.GetProfile(db))
				users.PATCH("/me", handlers.UpdateProfile(db))
				users.DELETE("/me", handlers.DeleteProfile(db))
				users.PUT("/me/avatar", handlers.UploadAvatar(db))
				users.POST("/reset-password", handlers.ResetPassword(db))
				users.GET("/:id", handlers.GetUser(db))
			}

			vehicles := protected.Group("/vehicles")
			{
				vehicles.POST("", handlers.CreateVehicle(db))
				vehicles.GET("", handlers.GetVehicles(db))
				vehicles.PATCH("/:id", handlers.UpdateVehicle(db))
				vehicles.DELETE("/:id", handlers.DeleteVehicle(db))
			}

			rides := protected.Group("/rides")
			{
				rides.POST("", handlers.CreateRide(db))
				rides.GET("/search", handlers.SearchRides(db))
				rides.GET("/me", handlers.GetMyRides(db))
				rides.GET("/:id", handlers.GetRide(db))
				rides.PATCH("/:id", handlers.UpdateRide(db))
				rides.DELETE("/:id", handlers.DeleteRide(db))
				rides.GET("/:id/messages", handlers.GetRideMessages(db))
				rides.GET("/me/:id/bookings", handlers.GetRideBookings(db))
				rides.POST("/me/:id/bookings/:bookingId/approve", handlers.ApproveBooking(db))
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", handlers.CreateBooking(db))
				bookings.GET("", handlers.GetMyBookings(db))
				bookings.DELETE("/:id", handlers.DeleteBooking(db))
			}

			protected.POST("/messages", handlers.SendMessage(db, hub))
		}
	}
}
