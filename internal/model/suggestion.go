package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipesnap/backend/internal/types"
)

// Outcome of a suggestion request
const (
	StatusSucceeded = "succeeded"
	StatusEmpty     = "empty"
	StatusFailed    = "failed"
)

// SuggestionRequest records one photo submitted for suggestions
type SuggestionRequest struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt   time.Time         `json:"created_at"`
	SessionID   string            `gorm:"size:64;index" json:"session_id,omitempty"`
	PhotoDigest string            `gorm:"size:64;not null;index" json:"photo_digest"`
	PhotoKey    string            `gorm:"size:255" json:"photo_key,omitempty"`
	MediaType   string            `gorm:"size:100" json:"media_type"`
	Vegetarian  bool              `gorm:"not null;default:false" json:"vegetarian"`
	Vegan       bool              `gorm:"not null;default:false" json:"vegan"`
	GlutenFree  bool              `gorm:"not null;default:false" json:"gluten_free"`
	DairyFree   bool              `gorm:"not null;default:false" json:"dairy_free"`
	Status      string            `gorm:"size:20;not null" json:"status"`
	Error       string            `gorm:"type:text" json:"error,omitempty"`
	Total       int               `gorm:"not null;default:0" json:"total"`
	Matched     int               `gorm:"not null;default:0" json:"matched"`
	Recipes     []SuggestedRecipe `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"recipes,omitempty"`
}

// TableName overrides the default table name
func (SuggestionRequest) TableName() string {
	return "suggestion_requests"
}

// BeforeCreate assigns an ID when none was set
func (r *SuggestionRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Preferences returns the flags that were active for the request
func (r *SuggestionRequest) Preferences() types.Preferences {
	return types.Preferences{
		Vegetarian: r.Vegetarian,
		Vegan:      r.Vegan,
		GlutenFree: r.GlutenFree,
		DairyFree:  r.DairyFree,
	}
}
