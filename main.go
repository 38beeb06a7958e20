package main

import (
	"log"

	"wordrush/config"
	"wordrush/handlers"
	"wordrush/middleware"
	"wordrush/models"
	"wordrush/routes"
	"wordrush/services"
	"wordrush/wordbank"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.CategoryWord{},
		&models.GameSession{},
		&models.SessionPlayer{},
		&models.RoundResult{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Load the embedded word bank
	bank, err := wordbank.New()
	if err != nil {
		log.Fatal("Failed to load word bank:", err)
	}

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	categoryService := services.NewCategoryService(db)
	sessionService := services.NewSessionService(db, redisClient, bank)

	// Initialize WebSocket hub
	hub := services.NewHub(sessionService)
	sessionService.AttachHub(hub)
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	sessionHandler := handlers.NewSessionHandler(sessionService, hub)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, categoryHandler, sessionHandler, hub, sessionService, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
