package auth

import (
	"testing"
	"time"
)

func testJWTManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-key-for-unit-tests",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "vidcourse-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := testJWTManager()

	token, jti, err := manager.GenerateAccessToken(42, "student@example.com", "student", 3)
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	if jti == "" {
		t.Error("expected a non-empty JTI")
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("expected user ID 42, got %d", claims.UserID)
	}
	if claims.Email != "student@example.com" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
	if claims.Role != "student" {
		t.Errorf("unexpected role: %s", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("expected token type access, got %s", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("expected token version 3, got %d", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims JTI %s does not match issued JTI %s", claims.ID, jti)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	manager := testJWTManager()
	other := NewJWTManager(JWTConfig{
		Secret:        "a-completely-different-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "vidcourse-test",
	})

	token, _, err := manager.GenerateAccessToken(1, "user@example.com", "student", 0)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	manager := testJWTManager()

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		if _, err := manager.ValidateToken(token); err == nil {
			t.Errorf("expected validation to fail for %q", token)
		}
	}
}

func TestRefreshAccessToken(t *testing.T) {
	manager := testJWTManager()

	refreshToken, _, err := manager.GenerateRefreshToken(7, "user@example.com", "student", 2)
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	accessToken, jti, err := manager.RefreshAccessToken(refreshToken, 2)
	if err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	if jti == "" {
		t.Error("expected a non-empty JTI for the new access token")
	}

	claims, err := manager.ValidateToken(accessToken)
	if err != nil {
		t.Fatalf("failed to validate refreshed token: %v", err)
	}
	if claims.TokenType != "access" {
		t.Errorf("expected an access token, got %s", claims.TokenType)
	}
	if claims.UserID != 7 {
		t.Errorf("expected user ID 7, got %d", claims.UserID)
	}
}

func TestRefreshAccessTokenRejectsAccessToken(t *testing.T) {
	manager := testJWTManager()

	accessToken, _, err := manager.GenerateAccessToken(7, "user@example.com", "student", 0)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, _, err := manager.RefreshAccessToken(accessToken, 0); err == nil {
		t.Error("expected refresh to reject an access token")
	}
}

func TestRefreshAccessTokenRejectsStaleTokenVersion(t *testing.T) {
	manager := testJWTManager()

	refreshToken, _, err := manager.GenerateRefreshToken(7, "user@example.com", "student", 1)
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	// The user's token version moved on (password change or logout-all);
	// the old refresh token must stop working.
	if _, _, err := manager.RefreshAccessToken(refreshToken, 2); err == nil {
		t.Error("expected refresh to reject a stale token version")
	}
}
