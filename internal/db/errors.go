package db

import "errors"

// Domain-level database error sentinels.
var (
	// Link errors
	ErrLinkNotFound  = errors.New("link not found")
	ErrDuplicateCode = errors.New("short code already exists")

	// Principal errors
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrDuplicateUsername = errors.New("username already exists")
)
