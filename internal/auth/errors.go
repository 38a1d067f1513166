// Package auth issues and validates the signed assertions that gate
// mutating operations, and owns secret generation and password hashing.
package auth

import "errors"

// Assertion validation failures, in the order they are checked.
var (
	ErrUnauthenticated = errors.New("no credential presented")
	ErrInvalidToken    = errors.New("malformed or unsigned token")
	ErrExpiredToken    = errors.New("token has expired")
	ErrWrongRole       = errors.New("token role mismatch")
	ErrRevoked         = errors.New("token revoked")
)
