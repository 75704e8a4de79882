package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipesnap/backend/config"
	"github.com/pageza/recipesnap/backend/internal/api"
	"github.com/pageza/recipesnap/backend/internal/database"
	"github.com/pageza/recipesnap/backend/internal/middleware"
	"github.com/pageza/recipesnap/backend/internal/router"
	"github.com/pageza/recipesnap/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	http    *http.Server
	logger  *slog.Logger
	closers []func() error
}

// New connects the configured backends and builds the HTTP server. Redis,
// the history database and the S3 archive are optional.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{logger: logger}
	checks := map[string]api.HealthChecker{}

	source, err := service.NewSuggestionSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion source: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisConfigured() {
		redisClient, err = database.NewRedisClient(ctx, cfg)
		if err != nil {
			// Continue with in-memory sessions and rate limiting
			logger.Warn("failed to connect to Redis, falling back to in-memory state", "error", err)
			redisClient = nil
		} else {
			s.closers = append(s.closers, redisClient.Close)
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	opts := []service.SuggestionOption{}
	var store service.SessionStore = service.NewMemorySessionStore()
	if redisClient != nil {
		store = service.NewRedisSessionStore(redisClient)
		opts = append(opts, service.WithCache(service.NewRedisSuggestionCache(redisClient), cfg.SuggestionCacheTTL))
	}

	var linker service.PhotoLinker
	if cfg.ArchivePhotos {
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			s.close()
			return nil, err
		}
		opts = append(opts, service.WithArchive(service.NewS3PhotoArchive(s3Config)))
		linker = s3Config
	}

	var history *service.HistoryService
	if cfg.HistoryEnabled {
		db, err := database.New(cfg)
		if err != nil {
			s.close()
			return nil, err
		}
		s.closers = append(s.closers, closeDB(db))
		checks["database"] = func(ctx context.Context) error { return database.HealthCheck(ctx, db) }

		history = service.NewHistoryService(db, linker)
		opts = append(opts, service.WithHistory(history))
	}

	suggestions := service.NewSuggestionService(source, opts...)
	sessions := service.NewSessionService(store, suggestions, cfg.JWTSecret, cfg.SessionTTL)

	s.router = router.SetupRouter(logger, cfg.AllowedOrigins, api.Dependencies{
		Sessions:      sessions,
		Suggestions:   suggestions,
		History:       history,
		Limiter:       middleware.NewSuggestionRateLimiter(redisClient, cfg.RateLimitPerHour),
		MaxPhotoBytes: cfg.MaxPhotoBytes,
		HealthChecks:  checks,
	})
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// uploads and the model call both fit in the write budget
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and releases the backends
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	return errors.Join(err, s.close())
}

func (s *Server) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

func closeDB(db *gorm.DB) func() error {
	return func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
}
