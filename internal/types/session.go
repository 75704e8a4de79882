package types

import "time"

// Notice is a transient, user-facing notification
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var (
	NoticeNoPhoto = Notice{
		Title:       "No photo selected",
		Description: "Please upload a photo of your ingredients.",
	}
	NoticeNoRecipes = Notice{
		Title:       "Error",
		Description: "Could not generate recipes from photo.",
	}
	NoticeSuggestionFailed = Notice{
		Title:       "Error",
		Description: "Failed to generate recipes. Please try again.",
	}
)

// SessionState is everything a single user session holds between requests
type SessionState struct {
	ID          string      `json:"id"`
	Photo       string      `json:"photo,omitempty"`
	Preferences Preferences `json:"preferences"`
	Recipes     []Recipe    `json:"recipes"`
	Loading     bool        `json:"loading"`
	Notice      *Notice     `json:"notice,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SuggestionResult is the outcome of one suggestion request
type SuggestionResult struct {
	Recipes  []Recipe `json:"recipes"`
	Total    int      `json:"total"`
	Excluded int      `json:"excluded"`
	Cached   bool     `json:"cached"`
}
