package models

import (
	"time"

	"github.com/google/uuid"
)

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is an authenticated identity, either a user or an admin.
// Users and admins have identical shape but live in disjoint tables;
// the role tag selects the backing table and the two are never
// interchangeable.
type Principal struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Secret       *string   `json:"-"` // revocable; nil after logout
	Active       bool      `json:"active"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// SecretMatches reports whether the stored secret is present and exactly
// equals the presented value. A nil secret never matches anything, which
// is what makes nulling it revoke every outstanding assertion.
func (p *Principal) SecretMatches(presented string) bool {
	return p.Secret != nil && *p.Secret == presented
}

// IsAdmin returns true if the principal carries the admin role.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
