package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plain password")
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword("wrong password", hash) {
		t.Fatal("expected mismatched password to fail verification")
	}
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	t.Parallel()

	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatal("expected verification against a garbage hash to fail")
	}
}
