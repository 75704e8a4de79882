package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/pageza/recipesnap/backend/internal/types"
)

// EmbeddingDimensions is the width of the recipe embedding column
const EmbeddingDimensions = 32

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB value type %T", value)
	}

	return json.Unmarshal(bytes, a)
}

// SuggestedRecipe is one recipe returned for a suggestion request
type SuggestedRecipe struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	RequestID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"request_id"`
	Position     int              `gorm:"not null" json:"position"`
	Name         string           `gorm:"size:255;not null" json:"name"`
	Ingredients  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions string           `gorm:"type:text" json:"instructions"`
	Vegetarian   *bool            `json:"vegetarian,omitempty"`
	Vegan        *bool            `json:"vegan,omitempty"`
	GlutenFree   *bool            `json:"gluten_free,omitempty"`
	DairyFree    *bool            `json:"dairy_free,omitempty"`
	Matched      bool             `gorm:"not null;default:false" json:"matched"`
	Embedding    pgvector.Vector  `gorm:"type:vector(32)" json:"-"`
}

// TableName overrides the default table name
func (SuggestedRecipe) TableName() string {
	return "suggested_recipes"
}

// BeforeCreate assigns an ID when none was set
func (r *SuggestedRecipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Recipe converts the row back into the wire representation
func (r *SuggestedRecipe) Recipe() types.Recipe {
	return types.Recipe{
		Name:         r.Name,
		Ingredients:  []string(r.Ingredients),
		Instructions: r.Instructions,
		Vegetarian:   r.Vegetarian,
		Vegan:        r.Vegan,
		GlutenFree:   r.GlutenFree,
		DairyFree:    r.DairyFree,
	}
}
