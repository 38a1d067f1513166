package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash == "Sup3rSecret" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword("Sup3rSecret", hash) {
		t.Error("VerifyPassword() = false for correct password")
	}
	if VerifyPassword("WrongPass1", hash) {
		t.Error("VerifyPassword() = true for wrong password")
	}
	if VerifyPassword("Sup3rSecret", "not-a-hash") {
		t.Error("VerifyPassword() = true for malformed hash")
	}
}
