package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost balances hashing time against login latency.
const bcryptCost = 12

// HashPassword produces a one-way hash of the password. The hash is
// opaque to the rest of the system.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
