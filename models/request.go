package models

// CountRequest is the payload for POST /count-badges.
type CountRequest struct {
	// ProfileURL is the public profile page to count badges on.
	ProfileURL string `json:"profile_url"`

	// MaxAge allows a cached count younger than this many milliseconds
	// to be returned instead of launching a browser. Zero or negative
	// disables the cache.
	MaxAge int `json:"max_age,omitempty"`
}

// BatchRequest is the payload for POST /api/v1/batch.
type BatchRequest struct {
	Rows []BatchRowInput `json:"rows" binding:"required,min=1,dive"`
}

// BatchRowInput is one (name, URL) pair submitted for counting.
type BatchRowInput struct {
	Name       string `json:"name,omitempty"`
	ProfileURL string `json:"profile_url"`
}
