package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipesnap/backend/internal/middleware"
	"github.com/pageza/recipesnap/backend/internal/service"
	"github.com/pageza/recipesnap/backend/internal/types"
)

// SessionHandler exposes the upload page state machine
type SessionHandler struct {
	sessions      *service.SessionService
	maxPhotoBytes int64
}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler(sessions *service.SessionService, maxPhotoBytes int64) *SessionHandler {
	return &SessionHandler{
		sessions:      sessions,
		maxPhotoBytes: maxPhotoBytes,
	}
}

// RegisterRoutes registers the session routes. The limiter guards submits.
func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup, limiter gin.HandlerFunc) {
	router.POST("/sessions", h.CreateSession)

	session := router.Group("/session")
	session.Use(middleware.SessionAuth(h.sessions))
	{
		session.GET("", h.GetSession)
		session.DELETE("", h.ResetSession)
		session.PUT("/photo", h.SetPhoto)
		session.PUT("/preferences", h.SetPreferences)
		session.POST("/preferences/:flag/toggle", h.TogglePreference)
		session.POST("/suggestions", limiter, h.Submit)
	}
}

// CreateSession starts a session and returns its bearer token
func (h *SessionHandler) CreateSession(c *gin.Context) {
	state, token, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.CreateSessionResponse{Session: state, Token: token})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	state, err := h.sessions.Get(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ResetSession clears the page back to its initial state
func (h *SessionHandler) ResetSession(c *gin.Context) {
	state, err := h.sessions.Reset(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *SessionHandler) SetPhoto(c *gin.Context) {
	photo, err := readPhotoUpload(c, h.maxPhotoBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	state, err := h.sessions.SetPhoto(c.Request.Context(), middleware.SessionID(c), photo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *SessionHandler) SetPreferences(c *gin.Context) {
	var prefs types.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preferences: " + err.Error()})
		return
	}

	state, err := h.sessions.SetPreferences(c.Request.Context(), middleware.SessionID(c), prefs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *SessionHandler) TogglePreference(c *gin.Context) {
	flag, err := types.ParseDietaryFlag(c.Param("flag"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.sessions.TogglePreference(c.Request.Context(), middleware.SessionID(c), flag)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Submit requests suggestions for the session photo. Failures still return
// the saved session so the client can render the notice.
func (h *SessionHandler) Submit(c *gin.Context) {
	state, err := h.sessions.Submit(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondErrorWithSession(c, err, state)
		return
	}
	c.JSON(http.StatusOK, state)
}
