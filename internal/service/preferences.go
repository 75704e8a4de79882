package service

import (
	"github.com/pageza/recipesnap/backend/internal/types"
)

// FilterRecipes returns the recipes that satisfy every selected preference,
// in their original order. With no preference selected the input is returned
// as is. The input slice is never modified.
func FilterRecipes(recipes []types.Recipe, prefs types.Preferences) []types.Recipe {
	if !prefs.Any() {
		return recipes
	}

	active := prefs.ActiveFlags()
	filtered := make([]types.Recipe, 0, len(recipes))
	for _, recipe := range recipes {
		if matchesAll(recipe, active) {
			filtered = append(filtered, recipe)
		}
	}
	return filtered
}

func matchesAll(recipe types.Recipe, flags []types.DietaryFlag) bool {
	for _, flag := range flags {
		if !recipe.Satisfies(flag) {
			return false
		}
	}
	return true
}
