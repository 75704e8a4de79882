package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipesnap/backend/internal/middleware"
	"github.com/pageza/recipesnap/backend/internal/service"
)

// HealthChecker probes a dependency
type HealthChecker func(ctx context.Context) error

// Dependencies are the services the HTTP API is built from. History is nil
// when suggestion history is disabled.
type Dependencies struct {
	Sessions      *service.SessionService
	Suggestions   service.Suggester
	History       *service.HistoryService
	Limiter       *middleware.RateLimiter
	MaxPhotoBytes int64
	HealthChecks  map[string]HealthChecker
}

// HealthCheck returns the health status of the API and its dependencies
func HealthCheck(checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		health := "healthy"
		if status != http.StatusOK {
			health = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status": health,
			"checks": results,
		})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", HealthCheck(deps.HealthChecks))

	var limiter gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.Limiter != nil {
		limiter = deps.Limiter.RateLimitMiddleware()
	}

	v1 := router.Group("/api/v1")
	NewSessionHandler(deps.Sessions, deps.MaxPhotoBytes).RegisterRoutes(v1, limiter)
	NewSuggestionHandler(deps.Suggestions, deps.MaxPhotoBytes).RegisterRoutes(v1, limiter)
	if deps.History != nil {
		NewHistoryHandler(deps.History).RegisterRoutes(v1)
	}
}
