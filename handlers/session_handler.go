package handlers

import (
	"errors"
	"net/http"
	"strings"

	"wordrush/game"
	"wordrush/services"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService *services.SessionService
	hub            *services.Hub
}

func NewSessionHandler(sessionService *services.SessionService, hub *services.Hub) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		hub:            hub,
	}
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.sessionService.CreateSession(userID.(uint), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}

func (h *SessionHandler) JoinSession(c *gin.Context) {
	code := strings.ToLower(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session code required"})
		return
	}

	var req services.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sessionService.JoinSession(code, &req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) LeaveSession(c *gin.Context) {
	code := strings.ToLower(c.Param("code"))
	playerID := c.Param("playerID")
	if code == "" || playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session code and player ID required"})
		return
	}

	snapshot, err := h.sessionService.LeaveSession(code, playerID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	code := strings.ToLower(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session code required"})
		return
	}

	snapshot, err := h.sessionService.StartSession(code, userID.(uint))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *SessionHandler) SubmitWord(c *gin.Context) {
	code := strings.ToLower(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session code required"})
		return
	}

	var req services.SubmitWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.sessionService.SubmitWord(code, &req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	code := strings.ToLower(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session code required"})
		return
	}

	snapshot, err := h.sessionService.GetSessionState(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":   snapshot,
		"connected": h.hub.ConnectedPlayers(code),
	})
}

func (h *SessionHandler) GetCategories(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": h.sessionService.Categories(userID.(uint))})
}

// statusForError maps the game core's error kinds to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrClosed),
		errors.Is(err, game.ErrSessionFull),
		errors.Is(err, game.ErrDuplicateID),
		errors.Is(err, game.ErrInvalidState),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrPlayerEliminated):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
