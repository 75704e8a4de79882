package types

// SetPhotoRequest carries a photo that the client already encoded as a data URI
type SetPhotoRequest struct {
	PhotoDataURI string `json:"photo_data_uri" binding:"required"`
}

// FilterRequest is the body of the stateless filter endpoint
type FilterRequest struct {
	Recipes     []Recipe    `json:"recipes"`
	Preferences Preferences `json:"preferences"`
}

// CreateSessionResponse is returned when a session is started
type CreateSessionResponse struct {
	Session *SessionState `json:"session"`
	Token   string        `json:"token"`
}

// ErrorResponse is the JSON shape of every failed request
type ErrorResponse struct {
	Error  string  `json:"error"`
	Notice *Notice `json:"notice,omitempty"`

	// Session is the saved state after a failed submit
	Session *SessionState `json:"session,omitempty"`
}

// FilterResponse is the result of the stateless filter endpoint
type FilterResponse struct {
	Recipes  []Recipe `json:"recipes"`
	Total    int      `json:"total"`
	Excluded int      `json:"excluded"`
}
