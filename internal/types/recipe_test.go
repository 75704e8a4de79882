package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDietaryFlag(t *testing.T) {
	cases := map[string]DietaryFlag{
		"vegetarian":  FlagVegetarian,
		" Vegan ":     FlagVegan,
		"glutenFree":  FlagGlutenFree,
		"gluten-free": FlagGlutenFree,
		"dairy_free":  FlagDairyFree,
		"DairyFree":   FlagDairyFree,
	}
	for in, want := range cases {
		got, err := ParseDietaryFlag(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDietaryFlag("keto")
	assert.Error(t, err)
}

func TestPreferencesToggle(t *testing.T) {
	var prefs Preferences
	assert.False(t, prefs.Any())

	prefs = prefs.Toggle(FlagVegan)
	assert.True(t, prefs.Vegan)
	assert.False(t, prefs.Vegetarian, "vegan must not imply vegetarian")
	assert.Equal(t, []DietaryFlag{FlagVegan}, prefs.ActiveFlags())

	prefs = prefs.Toggle(FlagDairyFree).Toggle(FlagVegetarian)
	assert.Equal(t, []DietaryFlag{FlagVegetarian, FlagVegan, FlagDairyFree}, prefs.ActiveFlags())

	prefs = prefs.Toggle(FlagVegan)
	assert.False(t, prefs.Active(FlagVegan))
}

func TestRecipeTagsKeepUnknownDistinctFromFalse(t *testing.T) {
	var recipe Recipe
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Soup","ingredients":["water"],"instructions":"boil","vegan":false}`), &recipe))

	require.NotNil(t, recipe.Tag(FlagVegan))
	assert.False(t, *recipe.Tag(FlagVegan))
	assert.Nil(t, recipe.Tag(FlagVegetarian))
	assert.False(t, recipe.Satisfies(FlagVegetarian))

	out, err := json.Marshal(recipe)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"vegan":false`)
	assert.NotContains(t, string(out), "vegetarian")
}
