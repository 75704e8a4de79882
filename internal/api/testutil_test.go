package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipesnap/backend/internal/database"
	"github.com/pageza/recipesnap/backend/internal/middleware"
	"github.com/pageza/recipesnap/backend/internal/service"
	"github.com/pageza/recipesnap/backend/internal/types"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), []byte("\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")...)

func init() {
	gin.SetMode(gin.TestMode)
}

func tag(v bool) *bool { return &v }

func sampleRecipes() []types.Recipe {
	return []types.Recipe{
		{Name: "Garden Salad", Ingredients: []string{"lettuce"}, Instructions: "Toss.", Vegetarian: tag(true), Vegan: tag(true)},
		{Name: "Cheese Omelette", Ingredients: []string{"eggs", "cheese"}, Instructions: "Cook.", Vegetarian: tag(true), Vegan: tag(false)},
		{Name: "Beef Stew", Ingredients: []string{"beef"}, Instructions: "Simmer.", Vegetarian: tag(false)},
	}
}

type stubSource struct {
	mu      sync.Mutex
	recipes []types.Recipe
	err     error
	calls   int
}

func (s *stubSource) SuggestRecipes(ctx context.Context, photo *types.Photo) ([]types.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.recipes, s.err
}

type testEnv struct {
	router  *gin.Engine
	source  *stubSource
	history *service.HistoryService
}

func setupTestRouter(t *testing.T, limit int) *testEnv {
	t.Helper()

	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, ""))

	source := &stubSource{recipes: sampleRecipes()}
	history := service.NewHistoryService(db, nil)
	suggestions := service.NewSuggestionService(source, service.WithHistory(history))
	sessions := service.NewSessionService(service.NewMemorySessionStore(), suggestions, "test-secret", time.Hour)

	router := gin.New()
	RegisterRoutes(router, Dependencies{
		Sessions:      sessions,
		Suggestions:   suggestions,
		History:       history,
		Limiter:       middleware.NewSuggestionRateLimiter(nil, limit),
		MaxPhotoBytes: 1024,
	})

	return &testEnv{router: router, source: source, history: history}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createSession(t *testing.T) (types.SessionState, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/sessions", "", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp types.CreateSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return *resp.Session, resp.Token
}

// multipartPhoto builds a form with a "photo" file plus extra fields
func multipartPhoto(t *testing.T, data []byte, fields map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if data != nil {
		part, err := writer.CreateFormFile("photo", "ingredients.png")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return buf.Bytes(), writer.FormDataContentType()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func recipeNames(recipes []types.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Name)
	}
	return out
}
