package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/recipesnap/backend/internal/types"
)

// ErrNoRecipes is returned when the model answered but suggested nothing
var ErrNoRecipes = errors.New("no recipes suggested")

var errMissingRecipes = errors.New(`object has no "recipes" field`)

const suggestionSystemPrompt = `You are a recipe suggestion AI. A user will upload a photo of ingredients they have available to them, and you will suggest recipes that they can make with those ingredients. Suggest at least three recipes.

Respond only with JSON in the following structure:
{
    "recipes": [
        {
            "name": "The name of the recipe",
            "ingredients": ["The ingredients required for the recipe"],
            "instructions": "The instructions for preparing the recipe",
            "vegetarian": true,
            "vegan": false,
            "gluten_free": true,
            "dairy_free": false
        }
    ]
}

The vegetarian, vegan, gluten_free and dairy_free fields must be booleans describing the finished dish.`

const suggestionUserPrompt = "Here is the photo of my ingredients. Suggest recipes I can make with them."

// parseRecipes extracts the recipe list from a model reply. Replies are
// expected to be a JSON object but may be wrapped in markdown fences or prose,
// so the first complete object with a "recipes" field is used and anything
// after it is ignored.
func parseRecipes(content string) ([]types.Recipe, error) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var firstErr error
	for start >= 0 {
		var payload struct {
			Recipes *[]types.Recipe `json:"recipes"`
		}
		err := json.NewDecoder(strings.NewReader(content[start:])).Decode(&payload)
		if err == nil && payload.Recipes == nil {
			err = errMissingRecipes
		}
		if err == nil {
			if len(*payload.Recipes) == 0 {
				return nil, ErrNoRecipes
			}
			return *payload.Recipes, nil
		}
		if firstErr == nil {
			firstErr = err
		}

		next := strings.IndexByte(content[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, fmt.Errorf("failed to parse recipes: %w", firstErr)
}
