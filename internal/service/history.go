package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipesnap/backend/internal/model"
	"github.com/pageza/recipesnap/backend/internal/types"
)

var (
	// ErrHistoryNotFound is returned for an unknown suggestion request
	ErrHistoryNotFound = errors.New("suggestion request not found")
	// ErrPhotoNotArchived is returned when a request has no archived photo
	ErrPhotoNotArchived = errors.New("photo not archived")
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	photoLinkExpiry     = 15 * time.Minute
)

// PhotoLinker issues temporary download links for archived photos
type PhotoLinker interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// HistoryRecord describes one finished suggestion request
type HistoryRecord struct {
	SessionID   string
	Photo       *types.Photo
	PhotoKey    string
	Preferences types.Preferences
	// Recipes is the unfiltered suggestion list
	Recipes []types.Recipe
	Err     error
}

// HistoryService persists suggestion requests and searches past recipes
type HistoryService struct {
	db     *gorm.DB
	linker PhotoLinker
}

// NewHistoryService creates a new HistoryService instance. linker may be nil
// when photos are not archived.
func NewHistoryService(db *gorm.DB, linker PhotoLinker) *HistoryService {
	return &HistoryService{
		db:     db,
		linker: linker,
	}
}

// Record stores a suggestion request together with its recipes
func (s *HistoryService) Record(ctx context.Context, rec HistoryRecord) (*model.SuggestionRequest, error) {
	req := &model.SuggestionRequest{
		SessionID:   rec.SessionID,
		PhotoDigest: PhotoDigest(rec.Photo),
		PhotoKey:    rec.PhotoKey,
		MediaType:   rec.Photo.MediaType,
		Vegetarian:  rec.Preferences.Vegetarian,
		Vegan:       rec.Preferences.Vegan,
		GlutenFree:  rec.Preferences.GlutenFree,
		DairyFree:   rec.Preferences.DairyFree,
		Total:       len(rec.Recipes),
	}

	switch {
	case rec.Err != nil && !errors.Is(rec.Err, ErrNoRecipes):
		req.Status = model.StatusFailed
		req.Error = rec.Err.Error()
	case len(rec.Recipes) == 0:
		req.Status = model.StatusEmpty
	default:
		req.Status = model.StatusSucceeded
	}

	active := rec.Preferences.ActiveFlags()
	for i, recipe := range rec.Recipes {
		matched := matchesAll(recipe, active)
		if matched {
			req.Matched++
		}
		req.Recipes = append(req.Recipes, model.SuggestedRecipe{
			Position:     i,
			Name:         recipe.Name,
			Ingredients:  model.JSONBStringArray(recipe.Ingredients),
			Instructions: recipe.Instructions,
			Vegetarian:   recipe.Vegetarian,
			Vegan:        recipe.Vegan,
			GlutenFree:   recipe.GlutenFree,
			DairyFree:    recipe.DairyFree,
			Matched:      matched,
			Embedding:    GenerateEmbedding(recipeEmbeddingText(recipe)),
		})
	}

	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, fmt.Errorf("failed to record suggestion request: %w", err)
	}
	return req, nil
}

// List returns the most recent suggestion requests without their recipes
func (s *HistoryService) List(ctx context.Context, limit int) ([]model.SuggestionRequest, error) {
	var requests []model.SuggestionRequest
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestion requests: %w", err)
	}
	return requests, nil
}

// Get returns one suggestion request with its recipes in suggestion order
func (s *HistoryService) Get(ctx context.Context, id uuid.UUID) (*model.SuggestionRequest, error) {
	var req model.SuggestionRequest
	err := s.db.WithContext(ctx).
		Preload("Recipes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion request: %w", err)
	}
	return &req, nil
}

// Search finds previously suggested recipes similar to query
func (s *HistoryService) Search(ctx context.Context, query string, limit int) ([]model.SuggestedRecipe, error) {
	var recipes []model.SuggestedRecipe
	dbQuery := s.db.WithContext(ctx).Limit(normalizeLimit(limit))

	if s.db.Dialector.Name() == "postgres" {
		vec := GenerateEmbedding(query)
		dbQuery = dbQuery.
			Where("embedding IS NOT NULL").
			Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
			})
	} else {
		// Fallback to keyword search for non-PostgreSQL databases
		like := "%" + strings.ToLower(query) + "%"
		dbQuery = dbQuery.
			Where("LOWER(name) LIKE ? OR LOWER(ingredients) LIKE ?", like, like).
			Order("name ASC")
	}

	if err := dbQuery.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return recipes, nil
}

// PhotoURL returns a temporary link to the archived photo of a request
func (s *HistoryService) PhotoURL(ctx context.Context, id uuid.UUID) (string, error) {
	var req model.SuggestionRequest
	err := s.db.WithContext(ctx).Select("id", "photo_key").First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrHistoryNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get suggestion request: %w", err)
	}
	if req.PhotoKey == "" || s.linker == nil {
		return "", ErrPhotoNotArchived
	}

	url, err := s.linker.GeneratePresignedURL(ctx, req.PhotoKey, photoLinkExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate photo link: %w", err)
	}
	return url, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
