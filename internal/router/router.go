package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipesnap/backend/internal/api"
	"github.com/pageza/recipesnap/backend/internal/middleware"
)

// SetupRouter configures the middleware stack and the application routes
func SetupRouter(logger *slog.Logger, allowedOrigins []string, deps api.Dependencies) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestLogger(logger),
		middleware.Recovery(),
		middleware.CORS(allowedOrigins),
	)

	api.RegisterRoutes(router, deps)
	return router
}
