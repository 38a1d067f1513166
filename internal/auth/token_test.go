package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"shortlinks/internal/models"
)

const testKey = "test-signing-key-at-least-32-chars"

func TestIssueAndValidate(t *testing.T) {
	m := NewTokenManager(testKey, time.Hour)

	token, err := m.Issue("alice", models.RoleUser, "secret-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := m.Validate(token, models.RoleUser)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.Role != models.RoleUser {
		t.Errorf("Role = %q, want %q", claims.Role, models.RoleUser)
	}
	if claims.Secret != "secret-1" {
		t.Errorf("Secret = %q, want %q", claims.Secret, "secret-1")
	}
}

func TestValidateMissingToken(t *testing.T) {
	m := NewTokenManager(testKey, time.Hour)

	if _, err := m.Validate("", models.RoleUser); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Validate(\"\") error = %v, want ErrUnauthenticated", err)
	}
}

func TestValidateMalformedToken(t *testing.T) {
	m := NewTokenManager(testKey, time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong structure", "a.b"},
		{"empty segments", ".."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token, models.RoleUser); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate(%q) error = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}

func TestValidateTamperedToken(t *testing.T) {
	m := NewTokenManager(testKey, time.Hour)

	token, err := m.Issue("alice", models.RoleUser, "secret-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := m.Validate(tampered, models.RoleUser); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(tampered) error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateWrongKey(t *testing.T) {
	m := NewTokenManager(testKey, time.Hour)
	other := NewTokenManager("another-signing-key-32-chars-long", time.Hour)

	token, err := other.Issue("alice", models.RoleUser, "secret-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := m.Validate(token, models.RoleUser); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(foreign signature) error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := NewTokenManager(testKey, -time.Minute)

	token, err := m.Issue("alice", models.RoleUser, "secret-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := m.Validate(token, models.RoleUser); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Validate(expired) error = %v, want ErrExpiredToken", err)
	}
}

func TestValidateWrongRole(t *testing.T) {
	m := NewTokenManager(testKey, time.Hour)

	userToken, err := m.Issue("alice", models.RoleUser, "secret-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	adminToken, err := m.Issue("root", models.RoleAdmin, "secret-2")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := m.Validate(userToken, models.RoleAdmin); !errors.Is(err, ErrWrongRole) {
		t.Errorf("user token against admin check: error = %v, want ErrWrongRole", err)
	}
	if _, err := m.Validate(adminToken, models.RoleUser); !errors.Is(err, ErrWrongRole) {
		t.Errorf("admin token against user check: error = %v, want ErrWrongRole", err)
	}
}

func TestCheckPrincipal(t *testing.T) {
	secret := "secret-1"
	rotated := "secret-2"
	claims := &Claims{Username: "alice", Role: models.RoleUser, Secret: secret}

	tests := []struct {
		name      string
		principal *models.Principal
		wantErr   error
	}{
		{
			name:      "nil principal",
			principal: nil,
			wantErr:   ErrRevoked,
		},
		{
			name:      "inactive principal",
			principal: &models.Principal{Username: "alice", Secret: &secret, Active: false},
			wantErr:   ErrRevoked,
		},
		{
			name:      "nulled secret",
			principal: &models.Principal{Username: "alice", Secret: nil, Active: true},
			wantErr:   ErrRevoked,
		},
		{
			name:      "rotated secret",
			principal: &models.Principal{Username: "alice", Secret: &rotated, Active: true},
			wantErr:   ErrRevoked,
		},
		{
			name:      "store agrees",
			principal: &models.Principal{Username: "alice", Secret: &secret, Active: true},
			wantErr:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPrincipal(tt.principal, claims)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckPrincipal() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
