package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipesnap/backend/internal/service"
	"github.com/pageza/recipesnap/backend/internal/types"
)

func TestSessionFlow(t *testing.T) {
	env := setupTestRouter(t, 10)
	created, token := env.createSession(t)
	assert.Empty(t, created.Recipes)

	t.Run("requires token", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/session", "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("submit without photo", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/session/suggestions", token, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decode[types.ErrorResponse](t, w)
		require.NotNil(t, resp.Notice)
		assert.Equal(t, types.NoticeNoPhoto, *resp.Notice)
		require.NotNil(t, resp.Session)
		assert.Empty(t, resp.Session.Recipes)
		assert.Zero(t, env.source.calls)
	})

	t.Run("upload photo as multipart", func(t *testing.T) {
		body, contentType := multipartPhoto(t, pngBytes, nil)
		w := env.do(t, http.MethodPut, "/api/v1/session/photo", token, body, contentType)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		state := decode[types.SessionState](t, w)
		assert.Equal(t, service.DataURI(&types.Photo{MediaType: "image/png", Data: pngBytes}), state.Photo)
	})

	t.Run("toggle preference", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/session/preferences/vegetarian/toggle", token, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[types.SessionState](t, w).Preferences.Vegetarian)

		w = env.do(t, http.MethodPost, "/api/v1/session/preferences/paleo/toggle", token, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("submit filters suggestions", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/session/suggestions", token, nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		state := decode[types.SessionState](t, w)
		require.Len(t, state.Recipes, 2)
		assert.Equal(t, "Garden Salad", state.Recipes[0].Name)
		assert.Equal(t, "Cheese Omelette", state.Recipes[1].Name)
		assert.False(t, state.Loading)
		assert.Nil(t, state.Notice)
	})

	t.Run("replace preferences refilters on next submit", func(t *testing.T) {
		prefs, _ := json.Marshal(types.Preferences{Vegan: true})
		w := env.do(t, http.MethodPut, "/api/v1/session/preferences", token, prefs, "application/json")
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPost, "/api/v1/session/suggestions", token, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		state := decode[types.SessionState](t, w)
		require.Len(t, state.Recipes, 1)
		assert.Equal(t, "Garden Salad", state.Recipes[0].Name)
	})

	t.Run("source failure clears recipes", func(t *testing.T) {
		env.source.err = errors.New("model unavailable")
		defer func() { env.source.err = nil }()

		w := env.do(t, http.MethodPost, "/api/v1/session/suggestions", token, nil, "")
		assert.Equal(t, http.StatusBadGateway, w.Code)

		resp := decode[types.ErrorResponse](t, w)
		require.NotNil(t, resp.Notice)
		assert.Equal(t, types.NoticeSuggestionFailed, *resp.Notice)
		assert.Equal(t, types.NoticeSuggestionFailed.Description, resp.Error)
		require.NotNil(t, resp.Session)
		assert.Empty(t, resp.Session.Recipes)

		w = env.do(t, http.MethodGet, "/api/v1/session", token, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		state := decode[types.SessionState](t, w)
		assert.Empty(t, state.Recipes)
		require.NotNil(t, state.Notice)
	})

	t.Run("empty result", func(t *testing.T) {
		env.source.recipes = []types.Recipe{}
		defer func() { env.source.recipes = sampleRecipes() }()

		w := env.do(t, http.MethodPost, "/api/v1/session/suggestions", token, nil, "")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		resp := decode[types.ErrorResponse](t, w)
		require.NotNil(t, resp.Notice)
		assert.Equal(t, types.NoticeNoRecipes, *resp.Notice)
	})

	t.Run("reset", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/api/v1/session", token, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		state := decode[types.SessionState](t, w)
		assert.Equal(t, created.ID, state.ID)
		assert.Empty(t, state.Photo)
		assert.False(t, state.Preferences.Any())
	})
}

func TestSetPhoto_Errors(t *testing.T) {
	env := setupTestRouter(t, 10)
	_, token := env.createSession(t)

	t.Run("data URI body", func(t *testing.T) {
		body, _ := json.Marshal(types.SetPhotoRequest{PhotoDataURI: service.DataURI(&types.Photo{MediaType: "image/png", Data: pngBytes})})
		w := env.do(t, http.MethodPut, "/api/v1/session/photo", token, body, "application/json")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		body, contentType := multipartPhoto(t, []byte("just some text, not a photo"), nil)
		w := env.do(t, http.MethodPut, "/api/v1/session/photo", token, body, contentType)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		big := append(append([]byte{}, pngBytes...), make([]byte, 2048)...)
		body, contentType := multipartPhoto(t, big, nil)
		w := env.do(t, http.MethodPut, "/api/v1/session/photo", token, body, contentType)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("missing photo field", func(t *testing.T) {
		body, contentType := multipartPhoto(t, nil, map[string]string{"note": "x"})
		w := env.do(t, http.MethodPut, "/api/v1/session/photo", token, body, contentType)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed data URI", func(t *testing.T) {
		body, _ := json.Marshal(types.SetPhotoRequest{PhotoDataURI: "not-a-data-uri"})
		w := env.do(t, http.MethodPut, "/api/v1/session/photo", token, body, "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSubmit_RateLimited(t *testing.T) {
	env := setupTestRouter(t, 1)
	_, token := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/v1/session/suggestions", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/session/suggestions", token, nil, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
