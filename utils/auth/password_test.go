package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	password := "correct-horse-battery"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hash == password {
		t.Fatal("hash must not equal the plaintext password")
	}

	if err := VerifyPassword(hash, password); err != nil {
		t.Errorf("expected the correct password to verify, got: %v", err)
	}
	if err := VerifyPassword(hash, "wrong-password"); err == nil {
		t.Error("expected the wrong password to fail verification")
	}
}

func TestHashPasswordProducesUniqueHashes(t *testing.T) {
	first, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	second, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	if first == second {
		t.Error("expected bcrypt to salt hashes, got identical output")
	}
}

func TestIsPasswordValid(t *testing.T) {
	valid := []string{"student-pass1", "Course2025", "a1b2c3d4"}
	for _, password := range valid {
		if !IsPasswordValid(password) {
			t.Errorf("expected %q to satisfy the password policy", password)
		}
	}

	// Too short, no digit, no letter, symbols with a digit but no letter
	invalid := []string{"short1", "lettersonlyhere", "1234567890", "--------1"}
	for _, password := range invalid {
		if IsPasswordValid(password) {
			t.Errorf("expected %q to fail the password policy", password)
		}
	}
}
