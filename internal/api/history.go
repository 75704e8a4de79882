package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipesnap/backend/internal/service"
)

// HistoryHandler exposes past suggestion requests
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler instance
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	history := router.Group("/history")
	{
		history.GET("", h.List)
		history.GET("/:id", h.Get)
		history.GET("/:id/photo", h.Photo)
	}
}

// List returns recent requests, or past recipes similar to ?q=
func (h *HistoryHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	if q := c.Query("q"); q != "" {
		recipes, err := h.history.Search(c.Request.Context(), q, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipes": recipes})
		return
	}

	requests, err := h.history.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *HistoryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request ID"})
		return
	}

	req, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// Photo redirects to a short-lived link for the archived photo
func (h *HistoryHandler) Photo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request ID"})
		return
	}

	url, err := h.history.PhotoURL(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}
