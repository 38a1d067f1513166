package auth

import (
	"strings"
	"testing"
)

func TestGenerateSecret(t *testing.T) {
	secret, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret() error = %v", err)
	}

	if len(secret) != SecretLength {
		t.Errorf("len(secret) = %d, want %d", len(secret), SecretLength)
	}

	for _, r := range secret {
		if !strings.ContainsRune(secretAlphabet, r) {
			t.Errorf("secret contains %q, not in alphabet", r)
		}
	}
}

func TestGenerateSecretUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		secret, err := GenerateSecret()
		if err != nil {
			t.Fatalf("GenerateSecret() error = %v", err)
		}
		if seen[secret] {
			t.Fatalf("GenerateSecret() repeated %q", secret)
		}
		seen[secret] = true
	}
}
