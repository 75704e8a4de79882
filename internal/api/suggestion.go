package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipesnap/backend/internal/service"
	"github.com/pageza/recipesnap/backend/internal/types"
)

// SuggestionHandler serves the stateless suggestion and filter endpoints
type SuggestionHandler struct {
	suggestions   service.Suggester
	maxPhotoBytes int64
}

// NewSuggestionHandler creates a new SuggestionHandler instance
func NewSuggestionHandler(suggestions service.Suggester, maxPhotoBytes int64) *SuggestionHandler {
	return &SuggestionHandler{
		suggestions:   suggestions,
		maxPhotoBytes: maxPhotoBytes,
	}
}

func (h *SuggestionHandler) RegisterRoutes(router *gin.RouterGroup, limiter gin.HandlerFunc) {
	router.POST("/suggestions", limiter, h.Suggest)
	router.POST("/recipes/filter", h.Filter)
}

// Suggest takes a multipart photo plus preference form fields and returns
// the matching suggestions
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	photo, err := readPhotoUpload(c, h.maxPhotoBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	prefs, err := formPreferences(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preferences: " + err.Error()})
		return
	}

	result, err := h.suggestions.Suggest(c.Request.Context(), service.SuggestInput{
		Photo:       photo,
		Preferences: prefs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// formPreferences reads the flags from the form alongside the photo, or from
// the query for JSON bodies. Checkbox values ("on") count as selected.
func formPreferences(c *gin.Context) (types.Preferences, error) {
	value := c.Query
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		value = c.PostForm
	}

	var prefs types.Preferences
	for _, flag := range types.DietaryFlags {
		selected, err := parseFormBool(value(string(flag)))
		if err != nil {
			return types.Preferences{}, fmt.Errorf("%s: %w", flag, err)
		}
		if selected {
			prefs = prefs.Toggle(flag)
		}
	}
	return prefs, nil
}

func parseFormBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "off", "no":
		return false, nil
	case "on", "yes":
		return true, nil
	}
	return strconv.ParseBool(v)
}

// Filter applies preferences to a recipe list the client already holds
func (h *SuggestionHandler) Filter(c *gin.Context) {
	var req types.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter request: " + err.Error()})
		return
	}
	if req.Recipes == nil {
		req.Recipes = []types.Recipe{}
	}

	filtered := service.FilterRecipes(req.Recipes, req.Preferences)
	c.JSON(http.StatusOK, types.FilterResponse{
		Recipes:  filtered,
		Total:    len(req.Recipes),
		Excluded: len(req.Recipes) - len(filtered),
	})
}
