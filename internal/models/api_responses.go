package models

import "time"

// ShortenResponse is returned after successfully creating a short link.
type ShortenResponse struct {
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	Destination string     `json:"destination"`
	Permanent   bool       `json:"permanent"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// StatsResponse describes the public statistics of a short link.
type StatsResponse struct {
	ShortCode    string     `json:"short_code"`
	Destination  string     `json:"destination"`
	Permanent    bool       `json:"permanent"`
	ClickCount   int64      `json:"click_count"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
}

// Pagination describes the paging state of a list response.
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// LinkListResponse is the paginated list shape used by /my-urls and /admin/urls.
type LinkListResponse struct {
	Links      []Link     `json:"urls"`
	Pagination Pagination `json:"pagination"`
	SortBy     string     `json:"sort_by"`
	Order      string     `json:"order"`
}

// SystemStats aggregates system-wide counts for the admin reporting endpoint.
type SystemStats struct {
	TotalURLs     int64     `json:"total_urls"`
	ActiveURLs    int64     `json:"active_urls"`
	ExpiredURLs   int64     `json:"expired_urls"`
	PermanentURLs int64     `json:"permanent_urls"`
	TotalClicks   int64     `json:"total_clicks"`
	TotalUsers    int64     `json:"total_users"`
	ActiveUsers   int64     `json:"active_users"`
	GeneratedAt   time.Time `json:"generated_at"`
}
