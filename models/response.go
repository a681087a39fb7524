package models

// CountResponse is the response for POST /count-badges.
type CountResponse struct {
	// Success indicates whether the request was accepted and counted.
	Success bool `json:"success"`

	// BadgeCount is the number of badge cards found. Zero is returned both
	// when the profile has no badges and when the page never rendered any
	// within the timeout.
	BadgeCount int `json:"badge_count"`

	// ProfileURL echoes the (trimmed) input URL.
	ProfileURL string `json:"profile_url,omitempty"`

	// CacheStatus is "hit" or "miss" when the caller asked for caching.
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is the human-readable failure reason; empty on success.
	Error string `json:"error,omitempty"`

	// Code is the machine-readable failure code; empty on success.
	Code string `json:"code,omitempty"`
}

// BatchResponse is the response for POST /api/v1/batch.
type BatchResponse struct {
	Success  bool       `json:"success"`
	Rows     []BatchRow `json:"rows,omitempty"`
	Summary  BatchStats `json:"summary"`
	Error    string     `json:"error,omitempty"`
	Code     string     `json:"code,omitempty"`
	Duration int64      `json:"duration_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status         string `json:"status"` // "healthy" or "degraded"
	Uptime         string `json:"uptime"`
	ActiveSessions int    `json:"active_sessions"`
	Version        string `json:"version"`
}
