package auth

import (
	"testing"
	"time"
)

const secret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	raw, err := MakeToken(42, "doctor", secret, 15*time.Minute)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}

	claims, err := ParseToken(raw, secret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id: got %d, want 42", claims.UserID)
	}
	if claims.Role != "doctor" {
		t.Errorf("role: got %q, want doctor", claims.Role)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	raw, err := MakeToken(1, "patient", secret, 15*time.Minute)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}
	if _, err := ParseToken(raw, "other-secret"); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	raw, err := MakeToken(1, "patient", secret, -time.Minute)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}
	if _, err := ParseToken(raw, secret); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not-a-jwt", secret); err == nil {
		t.Fatal("garbage accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("valid password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("invalid password accepted")
	}
}
