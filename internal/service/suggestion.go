package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pageza/recipesnap/backend/internal/logging"
	"github.com/pageza/recipesnap/backend/internal/model"
	"github.com/pageza/recipesnap/backend/internal/types"
)

// ErrSuggestionFailed wraps any error returned by the suggestion source
var ErrSuggestionFailed = errors.New("failed to generate recipes")

// HistoryRecorder persists finished suggestion requests
type HistoryRecorder interface {
	Record(ctx context.Context, rec HistoryRecord) (*model.SuggestionRequest, error)
}

// SuggestInput is one request for suggestions
type SuggestInput struct {
	SessionID   string
	Photo       *types.Photo
	Preferences types.Preferences
}

// Suggester produces filtered suggestions for a photo
type Suggester interface {
	Suggest(ctx context.Context, in SuggestInput) (*types.SuggestionResult, error)
}

// SuggestionService runs a suggestion request end to end
type SuggestionService struct {
	source   SuggestionSource
	cache    SuggestionCache
	cacheTTL time.Duration
	archive  PhotoArchive
	history  HistoryRecorder
}

// SuggestionOption configures optional collaborators of a SuggestionService
type SuggestionOption func(*SuggestionService)

// WithCache reuses suggestions for identical photos for ttl
func WithCache(cache SuggestionCache, ttl time.Duration) SuggestionOption {
	return func(s *SuggestionService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithArchive uploads every successfully analysed photo
func WithArchive(archive PhotoArchive) SuggestionOption {
	return func(s *SuggestionService) { s.archive = archive }
}

// WithHistory records every request
func WithHistory(history HistoryRecorder) SuggestionOption {
	return func(s *SuggestionService) { s.history = history }
}

// NewSuggestionService creates a new SuggestionService instance
func NewSuggestionService(source SuggestionSource, opts ...SuggestionOption) *SuggestionService {
	s := &SuggestionService{source: source}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest returns the suggestions for the photo that satisfy the preferences.
// Cache, archive and history failures are logged and never fail the request.
func (s *SuggestionService) Suggest(ctx context.Context, in SuggestInput) (*types.SuggestionResult, error) {
	if in.Photo == nil || len(in.Photo.Data) == 0 {
		return nil, ErrNoPhoto
	}
	logger := logging.FromContext(ctx)
	digest := PhotoDigest(in.Photo)

	recipes, cached := s.lookup(ctx, digest)
	if !cached {
		var err error
		recipes, err = s.source.SuggestRecipes(ctx, in.Photo)
		if err == nil && len(recipes) == 0 {
			err = ErrNoRecipes
		}
		if err != nil {
			s.record(ctx, in, "", nil, err)
			if errors.Is(err, ErrNoRecipes) {
				return nil, ErrNoRecipes
			}
			logger.Error("suggestion source failed", "error", err, "digest", digest)
			return nil, fmt.Errorf("%w: %w", ErrSuggestionFailed, err)
		}
		s.store(ctx, digest, recipes)
	}

	var photoKey string
	if s.archive != nil {
		key, err := s.archive.Archive(ctx, in.Photo)
		if err != nil {
			logger.Warn("failed to archive photo", "error", err, "digest", digest)
		}
		photoKey = key
	}

	filtered := FilterRecipes(recipes, in.Preferences)
	s.record(ctx, in, photoKey, recipes, nil)

	logger.Info("suggestions generated",
		"digest", digest,
		"total", len(recipes),
		"matched", len(filtered),
		"cached", cached,
	)

	return &types.SuggestionResult{
		Recipes:  filtered,
		Total:    len(recipes),
		Excluded: len(recipes) - len(filtered),
		Cached:   cached,
	}, nil
}

func (s *SuggestionService) lookup(ctx context.Context, digest string) ([]types.Recipe, bool) {
	if s.cache == nil {
		return nil, false
	}
	recipes, ok, err := s.cache.Get(ctx, digest)
	if err != nil {
		logging.FromContext(ctx).Warn("suggestion cache lookup failed", "error", err)
		return nil, false
	}
	if !ok || len(recipes) == 0 {
		return nil, false
	}
	return recipes, true
}

func (s *SuggestionService) store(ctx context.Context, digest string, recipes []types.Recipe) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, digest, recipes, s.cacheTTL); err != nil {
		logging.FromContext(ctx).Warn("failed to cache suggestions", "error", err)
	}
}

func (s *SuggestionService) record(ctx context.Context, in SuggestInput, photoKey string, recipes []types.Recipe, err error) {
	if s.history == nil {
		return
	}
	_, recErr := s.history.Record(ctx, HistoryRecord{
		SessionID:   in.SessionID,
		Photo:       in.Photo,
		PhotoKey:    photoKey,
		Preferences: in.Preferences,
		Recipes:     recipes,
		Err:         err,
	})
	if recErr != nil {
		logging.FromContext(ctx).Warn("failed to record suggestion history", "error", recErr)
	}
}
