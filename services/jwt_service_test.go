package services

import (
	"testing"

	"github.com/website-f/gate/config"
)

func TestExtractClaimsRoundTrip(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecretKey: "test-secret"})

	token, err := svc.GenerateToken(7, "admin")
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}

	claims, err := svc.ExtractClaims(token)
	if err != nil {
		t.Fatalf("claim extraction failed: %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("expected user id 7, got %d", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Fatalf("expected admin role, got %q", claims.Role)
	}
	if claims.Issuer != "gate-http-service" {
		t.Fatalf("unexpected issuer: %q", claims.Issuer)
	}
}

func TestExtractClaimsRejectsTamperedToken(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecretKey: "test-secret"})

	token, err := svc.GenerateToken(7, "admin")
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}

	if _, err := svc.ExtractClaims(token + "x"); err == nil {
		t.Fatal("tampered token must be rejected")
	}
	if _, err := svc.ExtractClaims("not-a-jwt"); err == nil {
		t.Fatal("garbage token must be rejected")
	}

	other := NewJWTService(&config.Config{JWTSecretKey: "other-secret"})
	if _, err := other.ExtractClaims(token); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}
