package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// secretAlphabet is URL-safe so secrets can travel inside bearer tokens.
const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// SecretLength is the length of generated revocable secrets.
const SecretLength = 64

// GenerateSecret produces a new revocable secret from a cryptographically
// strong random source. A fresh secret is stored on every login, which
// invalidates all assertions issued against the previous one.
func GenerateSecret() (string, error) {
	return randomString(secretAlphabet, SecretLength)
}

func randomString(alphabet string, length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
