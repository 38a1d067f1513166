// Package shortcode allocates collision-free short codes backed by the
// link store's uniqueness constraint.
package shortcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"shortlinks/internal/db"
	"shortlinks/internal/metrics"
	"shortlinks/internal/models"
)

// Alphabet is the full 62-character code alphabet.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	// DefaultLength gives a 62^6 code space.
	DefaultLength = 6
	// DefaultMaxAttempts bounds the collision retry loop.
	DefaultMaxAttempts = 100
)

// ErrExhausted is returned when no free code was found within the retry
// bound. Surfaced to callers as a server fault, never degraded to a
// different code length.
var ErrExhausted = errors.New("could not allocate a unique short code")

// LinkStore is the slice of the store the allocator needs.
type LinkStore interface {
	CodeExists(ctx context.Context, code string) (bool, error)
	CreateLink(ctx context.Context, link *models.Link) error
}

// Allocator generates short codes and inserts links under them.
type Allocator struct {
	store       LinkStore
	length      int
	maxAttempts int
}

// NewAllocator creates an allocator over the given store. Non-positive
// length or maxAttempts fall back to the defaults.
func NewAllocator(store LinkStore, length, maxAttempts int) *Allocator {
	if length <= 0 {
		length = DefaultLength
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Allocator{store: store, length: length, maxAttempts: maxAttempts}
}

// Generate produces one candidate code, uniform over the alphabet, from a
// cryptographically strong source. Codes must not be guessable or
// enumerable, so a counter is never an option here.
func (a *Allocator) Generate() (string, error) {
	code := make([]byte, a.length)
	max := big.NewInt(int64(len(Alphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		code[i] = Alphabet[n.Int64()]
	}
	return string(code), nil
}

// Allocate fills link.Code with a fresh code and inserts the link.
// The existence pre-check keeps the common path cheap; two concurrent
// allocations can still pass it with the same code, so the store's
// uniqueness constraint stays the final authority and a duplicate insert
// is retried like any other collision. Exceeding the bound returns
// ErrExhausted with the link unmodified.
func (a *Allocator) Allocate(ctx context.Context, link *models.Link) error {
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		code, err := a.Generate()
		if err != nil {
			return err
		}

		exists, err := a.store.CodeExists(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to check code existence: %w", err)
		}
		if exists {
			metrics.RecordCodeCollision()
			continue
		}

		link.Code = code
		err = a.store.CreateLink(ctx, link)
		if errors.Is(err, db.ErrDuplicateCode) {
			metrics.RecordCodeCollision()
			link.Code = ""
			continue
		}
		return err
	}

	link.Code = ""
	return ErrExhausted
}
