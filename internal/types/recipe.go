package types

import (
	"fmt"
	"strings"
)

// DietaryFlag names one of the four dietary preferences a user can toggle
type DietaryFlag string

const (
	FlagVegetarian DietaryFlag = "vegetarian"
	FlagVegan      DietaryFlag = "vegan"
	FlagGlutenFree DietaryFlag = "gluten_free"
	FlagDairyFree  DietaryFlag = "dairy_free"
)

// DietaryFlags lists every flag in evaluation order
var DietaryFlags = []DietaryFlag{FlagVegetarian, FlagVegan, FlagGlutenFree, FlagDairyFree}

// ParseDietaryFlag accepts the canonical flag names as well as the camelCase
// and hyphenated spellings used by older clients.
func ParseDietaryFlag(s string) (DietaryFlag, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "vegetarian":
		return FlagVegetarian, nil
	case "vegan":
		return FlagVegan, nil
	case "gluten_free", "glutenfree":
		return FlagGlutenFree, nil
	case "dairy_free", "dairyfree":
		return FlagDairyFree, nil
	}
	return "", fmt.Errorf("unknown dietary flag %q", s)
}

// Recipe represents a suggested dish. Dietary tags are optional: nil means
// the suggestion source did not say.
type Recipe struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Vegetarian   *bool    `json:"vegetarian,omitempty"`
	Vegan        *bool    `json:"vegan,omitempty"`
	GlutenFree   *bool    `json:"gluten_free,omitempty"`
	DairyFree    *bool    `json:"dairy_free,omitempty"`
}

// Tag returns the recipe's tag for flag, or nil when it is unknown
func (r Recipe) Tag(flag DietaryFlag) *bool {
	switch flag {
	case FlagVegetarian:
		return r.Vegetarian
	case FlagVegan:
		return r.Vegan
	case FlagGlutenFree:
		return r.GlutenFree
	case FlagDairyFree:
		return r.DairyFree
	}
	return nil
}

// Satisfies reports whether the recipe is positively tagged for flag.
// An unknown tag does not satisfy.
func (r Recipe) Satisfies(flag DietaryFlag) bool {
	tag := r.Tag(flag)
	return tag != nil && *tag
}

// Preferences is the set of dietary flags selected by the user
type Preferences struct {
	Vegetarian bool `json:"vegetarian"`
	Vegan      bool `json:"vegan"`
	GlutenFree bool `json:"gluten_free"`
	DairyFree  bool `json:"dairy_free"`
}

// Active reports whether flag is selected
func (p Preferences) Active(flag DietaryFlag) bool {
	switch flag {
	case FlagVegetarian:
		return p.Vegetarian
	case FlagVegan:
		return p.Vegan
	case FlagGlutenFree:
		return p.GlutenFree
	case FlagDairyFree:
		return p.DairyFree
	}
	return false
}

// Toggle returns a copy of p with flag inverted
func (p Preferences) Toggle(flag DietaryFlag) Preferences {
	switch flag {
	case FlagVegetarian:
		p.Vegetarian = !p.Vegetarian
	case FlagVegan:
		p.Vegan = !p.Vegan
	case FlagGlutenFree:
		p.GlutenFree = !p.GlutenFree
	case FlagDairyFree:
		p.DairyFree = !p.DairyFree
	}
	return p
}

// Any reports whether at least one flag is selected
func (p Preferences) Any() bool {
	return p.Vegetarian || p.Vegan || p.GlutenFree || p.DairyFree
}

// ActiveFlags returns the selected flags in evaluation order
func (p Preferences) ActiveFlags() []DietaryFlag {
	var flags []DietaryFlag
	for _, flag := range DietaryFlags {
		if p.Active(flag) {
			flags = append(flags, flag)
		}
	}
	return flags
}
