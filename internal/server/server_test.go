package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipesnap/backend/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerHost:         "127.0.0.1",
		ServerPort:         "0",
		AllowedOrigins:     []string{"http://localhost:5173"},
		JWTSecret:          "test-secret",
		SessionTTL:         time.Hour,
		LLMProvider:        config.ProviderOpenAI,
		LLMAPIKey:          "test-key",
		LLMAPIURL:          "http://127.0.0.1:1/v1/chat/completions",
		LLMModel:           "test-model",
		LLMTimeout:         time.Second,
		MaxPhotoBytes:      1 << 20,
		SuggestionCacheTTL: time.Hour,
		RateLimitPerHour:   30,
	}
}

func TestNew(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv, err := New(context.Background(), testConfig(), logger)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestNew_RequiresAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.LLMAPIKey = ""

	_, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.RedisHost = "127.0.0.1"
	cfg.RedisPort = "1"

	srv, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}
