package httpauth

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := Sign(testSecret, 42, "a@b.com", "user", time.Hour)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	claims, err := Verify(testSecret, token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "a@b.com" || claims.Role != "user" {
		t.Errorf("Claims mangled in round trip: %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _ := Sign(testSecret, 1, "a@b.com", "user", time.Hour)
	if _, err := Verify("another-secret", token); err == nil {
		t.Error("Expected verification to fail with the wrong secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	token, _ := Sign(testSecret, 1, "a@b.com", "user", -time.Minute)
	if _, err := Verify(testSecret, token); err == nil {
		t.Error("Expected verification to fail for an expired token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := Verify(testSecret, "not.a.token"); err == nil {
		t.Error("Expected verification to fail for garbage input")
	}
}

func TestExtractToken(t *testing.T) {
	if got := ExtractToken("Bearer abc123"); got != "abc123" {
		t.Errorf("Expected abc123, got %q", got)
	}
	if got := ExtractToken(""); got != "" {
		t.Errorf("Expected empty token for missing header, got %q", got)
	}
	if got := ExtractToken("Basic abc123"); got != "" {
		t.Errorf("Expected empty token for non-bearer header, got %q", got)
	}
}
