package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipesnap/backend/internal/model"
	"github.com/pageza/recipesnap/backend/internal/types"
)

type fakeSource struct {
	mu      sync.Mutex
	recipes []types.Recipe
	err     error
	calls   int
}

func (f *fakeSource) SuggestRecipes(ctx context.Context, photo *types.Photo) ([]types.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.recipes, f.err
}

type memoryCache struct {
	entries map[string][]types.Recipe
	err     error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]types.Recipe{}}
}

func (c *memoryCache) Get(ctx context.Context, digest string) ([]types.Recipe, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	r, ok := c.entries[digest]
	return r, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, digest string, recipes []types.Recipe, ttl time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.entries[digest] = recipes
	return nil
}

type fakeArchive struct {
	keys []string
	err  error
}

func (a *fakeArchive) Archive(ctx context.Context, photo *types.Photo) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	key := PhotoKey(photo)
	a.keys = append(a.keys, key)
	return key, nil
}

func TestSuggestionService_Suggest(t *testing.T) {
	ctx := context.Background()

	t.Run("no photo", func(t *testing.T) {
		source := &fakeSource{recipes: sampleRecipes()}
		svc := NewSuggestionService(source)

		_, err := svc.Suggest(ctx, SuggestInput{})
		assert.ErrorIs(t, err, ErrNoPhoto)
		assert.Zero(t, source.calls)
	})

	t.Run("filters suggestions", func(t *testing.T) {
		svc := NewSuggestionService(&fakeSource{recipes: sampleRecipes()})

		result, err := svc.Suggest(ctx, SuggestInput{Photo: testPhoto(), Preferences: types.Preferences{Vegan: true}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Garden Salad", "Tofu Stir Fry"}, names(result.Recipes))
		assert.Equal(t, 5, result.Total)
		assert.Equal(t, 3, result.Excluded)
		assert.False(t, result.Cached)
	})

	t.Run("cache short-circuits the source", func(t *testing.T) {
		source := &fakeSource{recipes: sampleRecipes()}
		cache := newMemoryCache()
		svc := NewSuggestionService(source, WithCache(cache, time.Hour))

		first, err := svc.Suggest(ctx, SuggestInput{Photo: testPhoto()})
		require.NoError(t, err)
		assert.False(t, first.Cached)

		second, err := svc.Suggest(ctx, SuggestInput{Photo: testPhoto(), Preferences: types.Preferences{GlutenFree: true}})
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, []string{"Garden Salad", "Cheese Omelette"}, names(second.Recipes))
		assert.Equal(t, 1, source.calls)
		assert.Len(t, cache.entries[PhotoDigest(testPhoto())], 5)
	})

	t.Run("cache errors are ignored", func(t *testing.T) {
		source := &fakeSource{recipes: sampleRecipes()}
		cache := newMemoryCache()
		cache.err = errors.New("connection refused")
		svc := NewSuggestionService(source, WithCache(cache, time.Hour))

		result, err := svc.Suggest(ctx, SuggestInput{Photo: testPhoto()})
		require.NoError(t, err)
		assert.Len(t, result.Recipes, 5)
	})

	t.Run("empty result", func(t *testing.T) {
		cache := newMemoryCache()
		svc := NewSuggestionService(&fakeSource{recipes: []types.Recipe{}}, WithCache(cache, time.Hour))

		_, err := svc.Suggest(ctx, SuggestInput{Photo: testPhoto()})
		assert.ErrorIs(t, err, ErrNoRecipes)
		assert.NotErrorIs(t, err, ErrSuggestionFailed)
		assert.Empty(t, cache.entries)
	})

	t.Run("source failure", func(t *testing.T) {
		svc := NewSuggestionService(&fakeSource{err: errors.New("quota exceeded")})

		_, err := svc.Suggest(ctx, SuggestInput{Photo: testPhoto()})
		assert.ErrorIs(t, err, ErrSuggestionFailed)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("archives photo and records history", func(t *testing.T) {
		archive := &fakeArchive{}
		history := NewHistoryService(setupHistoryDB(t), nil)
		svc := NewSuggestionService(&fakeSource{recipes: sampleRecipes()}, WithArchive(archive), WithHistory(history))

		_, err := svc.Suggest(ctx, SuggestInput{SessionID: "s-1", Photo: testPhoto(), Preferences: types.Preferences{Vegetarian: true}})
		require.NoError(t, err)
		require.Len(t, archive.keys, 1)

		requests, err := history.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, "s-1", requests[0].SessionID)
		assert.Equal(t, archive.keys[0], requests[0].PhotoKey)
		assert.Equal(t, model.StatusSucceeded, requests[0].Status)
		assert.Equal(t, 3, requests[0].Matched)
	})

	t.Run("archive failure does not fail the request", func(t *testing.T) {
		svc := NewSuggestionService(&fakeSource{recipes: sampleRecipes()}, WithArchive(&fakeArchive{err: errors.New("denied")}))

		result, err := svc.Suggest(ctx, SuggestInput{Photo: testPhoto()})
		require.NoError(t, err)
		assert.Len(t, result.Recipes, 5)
	})

	t.Run("failures are recorded", func(t *testing.T) {
		history := NewHistoryService(setupHistoryDB(t), nil)
		svc := NewSuggestionService(&fakeSource{err: errors.New("boom")}, WithHistory(history))

		_, err := svc.Suggest(ctx, SuggestInput{Photo: testPhoto()})
		require.Error(t, err)

		requests, err := history.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, model.StatusFailed, requests[0].Status)
	})
}
