package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shortlinks/internal/models"
)

// Claims is the payload of a signed assertion. It carries a verbatim copy
// of the principal's secret at issuance time so the validator can do an
// exact-match revocation check against the live store.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Secret   string `json:"secret"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies assertions with a shared HMAC key.
type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
}

// NewTokenManager creates a TokenManager signing with the given key.
// ttl is the fixed expiry window; there is no refresh, expiry forces a
// new login.
func NewTokenManager(secretKey string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
	}
}

// TTL returns the assertion expiry window.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a signed assertion binding the identity, role, and the
// current revocable secret. Pure signing, no side effects.
func (m *TokenManager) Issue(username, role, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		Role:     role,
		Secret:   secret,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Validate verifies an assertion's integrity, expiry, and role. The role
// check runs before any store lookup so a probe can't learn which identity
// namespace it hit. The caller still has to cross-check the embedded
// secret against the live store; signature validity alone is never enough.
func (m *TokenManager) Validate(tokenString, requiredRole string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Role != requiredRole {
		return nil, ErrWrongRole
	}

	return claims, nil
}

// CheckPrincipal is the live half of the dual-layer check: the assertion
// is accepted only if the store still holds an active principal whose
// secret exactly equals the one embedded at issuance. Any disagreement
// (missing, inactive, rotated, nulled) reads as revocation.
func CheckPrincipal(p *models.Principal, claims *Claims) error {
	if p == nil || !p.Active || !p.SecretMatches(claims.Secret) {
		return ErrRevoked
	}
	return nil
}
