package integration

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipesnap/backend/internal/api"
	"github.com/pageza/recipesnap/backend/internal/middleware"
	"github.com/pageza/recipesnap/backend/internal/model"
	"github.com/pageza/recipesnap/backend/internal/router"
	"github.com/pageza/recipesnap/backend/internal/service"
	"github.com/pageza/recipesnap/backend/internal/testdb"
	"github.com/pageza/recipesnap/backend/internal/types"
)

func TestSessionFlow_HTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testdb.SetupTestDB(t)
	client := testdb.SetupTestRedis(t)

	history := service.NewHistoryService(db, nil)
	suggestions := service.NewSuggestionService(&countingSource{},
		service.WithCache(service.NewRedisSuggestionCache(client), time.Minute),
		service.WithHistory(history),
	)
	sessions := service.NewSessionService(service.NewRedisSessionStore(client), suggestions, "secret", time.Hour)

	engine := router.SetupRouter(slog.New(slog.DiscardHandler), []string{"http://localhost:5173"}, api.Dependencies{
		Sessions:      sessions,
		Suggestions:   suggestions,
		History:       history,
		Limiter:       middleware.NewSuggestionRateLimiter(client, 10),
		MaxPhotoBytes: 1 << 20,
	})

	do := func(method, path, token string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created types.CreateSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	token := created.Token

	w = do(http.MethodPost, "/api/v1/session/suggestions", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(photo.Data)
	w = do(http.MethodPut, "/api/v1/session/photo", token, types.SetPhotoRequest{PhotoDataURI: dataURI})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(http.MethodPut, "/api/v1/session/preferences", token, types.Preferences{GlutenFree: true})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodPost, "/api/v1/session/suggestions", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state types.SessionState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.Len(t, state.Recipes, 1)
	assert.Equal(t, "Chicken Curry", state.Recipes[0].Name)
	assert.False(t, state.Loading)
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))

	w = do(http.MethodGet, "/api/v1/history", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Requests []model.SuggestionRequest `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Requests, 1)
	assert.Equal(t, model.StatusSucceeded, listed.Requests[0].Status)
	assert.Equal(t, 3, listed.Requests[0].Total)
	assert.Equal(t, 1, listed.Requests[0].Matched)
}
