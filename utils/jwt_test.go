package utils

import (
	"testing"

	"github.com/monizb/vmp/config"
)

func init() {
	// Tests run against the built-in dev secrets.
	config.LoadConfig()
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("507f1f77bcf86cd799439011", "dev@example.com", "Dev", []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "507f1f77bcf86cd799439011" {
		t.Errorf("subject = %q", claims.Subject)
	}
	if claims.Email != "dev@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Role != "Dev" {
		t.Errorf("role = %q", claims.Role)
	}
	if len(claims.TeamIDs) != 2 || claims.TeamIDs[0] != "t1" {
		t.Errorf("teamIds = %v", claims.TeamIDs)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "507f1f77bcf86cd799439011" {
		t.Errorf("subject = %q", claims.Subject)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("tokenType = %q", claims.TokenType)
	}
}

// The two token families are signed with different secrets and carry
// different claims, so neither can stand in for the other.
func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	token, err := GenerateAccessToken("u1", "a@b.c", "Admin", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ValidateRefreshToken(token); err == nil {
		t.Fatal("access token accepted as refresh token")
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	token, err := GenerateRefreshToken("u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ValidateAccessToken(token); err == nil {
		t.Fatal("refresh token accepted as access token")
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	if _, err := ValidateAccessToken("not.a.jwt"); err == nil {
		t.Fatal("garbage accepted")
	}
}
