package routes

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"wordrush/handlers"
	"wordrush/middleware"
	"wordrush/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	categoryHandler *handlers.CategoryHandler,
	sessionHandler *handlers.SessionHandler,
	hub *services.Hub,
	sessionService *services.SessionService,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// User profile
			protected.GET("/auth/profile", authHandler.GetProfile)

			// Custom category routes
			categories := protected.Group("/categories")
			{
				categories.GET("", categoryHandler.GetUserCategories)
				categories.POST("", categoryHandler.CreateCategory)
				categories.GET("/:id", categoryHandler.GetCategoryByID)
				categories.PUT("/:id", categoryHandler.UpdateCategory)
				categories.DELETE("/:id", categoryHandler.DeleteCategory)
			}

			// Session control routes (creator only)
			sessions := protected.Group("/sessions")
			{
				sessions.POST("", sessionHandler.CreateSession)
				sessions.POST("/:code/start", sessionHandler.StartSession)
			}

			// Playable categories: embedded bank plus the user's custom ones
			protected.GET("/wordbank/categories", sessionHandler.GetCategories)
		}

		// Public session routes
		sessions := api.Group("/sessions")
		{
			sessions.POST("/:code/join", sessionHandler.JoinSession)
			sessions.GET("/:code", sessionHandler.GetSession)
			sessions.POST("/:code/word", sessionHandler.SubmitWord)
			sessions.DELETE("/:code/players/:playerID", sessionHandler.LeaveSession)
		}
	}

	// WebSocket endpoint for live session state
	router.GET("/ws/:code/:playerID", func(c *gin.Context) {
		code := strings.ToLower(c.Param("code"))
		playerID := c.Param("playerID")

		if err := validatePlayerAccess(sessionService, code, playerID); err != nil {
			log.Printf("WebSocket access denied for session %s, player %s: %v", code, playerID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Player not found in session"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for session %s, player %s: %v", code, playerID, err)
			return
		}

		hub.RegisterClient(conn, code, playerID)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// validatePlayerAccess checks that the player belongs to the session
// before letting them watch its state stream.
func validatePlayerAccess(sessionService *services.SessionService, code, playerID string) error {
	snapshot, err := sessionService.GetSessionState(code)
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	if snapshot.Player(playerID) == nil {
		return fmt.Errorf("player %s not in session %s", playerID, code)
	}
	return nil
}
