package models

import (
	"time"

	"github.com/google/uuid"
)

// Link represents a short-code-to-destination mapping.
type Link struct {
	ID           uuid.UUID  `json:"-"` // internal only; the code is the external identifier
	Code         string     `json:"short_code"`
	Destination  string     `json:"destination"`
	UserID       uuid.UUID  `json:"-"`
	Permanent    bool       `json:"permanent"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ClickCount   int64      `json:"click_count"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsExpired reports whether the link has passed its expiry at the given
// instant. Permanent links never expire. Computed at read time so that a
// cleanup sweep and a redirect request always agree.
func (l *Link) IsExpired(now time.Time) bool {
	return !l.Permanent && l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// ExpiryFor computes the expires-at timestamp for a non-permanent link
// created at the given instant. A month counts as 30 days.
func ExpiryFor(createdAt time.Time, months int) time.Time {
	return createdAt.Add(time.Duration(months) * 30 * 24 * time.Hour)
}
