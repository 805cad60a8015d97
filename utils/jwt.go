// utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/monizb/vmp/config"
)

// AccessClaims identify a user for the lifetime of a short-lived access
// token. Role and team memberships ride along so the middleware can build
// a principal without re-reading them, but the user document stays the
// source of truth on every request.
type AccessClaims struct {
	Email   string   `json:"email"`
	Role    string   `json:"role"`
	TeamIDs []string `json:"teamIds"`
	jwt.RegisteredClaims
}

// RefreshClaims are deliberately minimal: subject plus a type marker so an
// access token can never be replayed as a refresh token.
type RefreshClaims struct {
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

var ErrNotRefreshToken = errors.New("token is not a refresh token")

func GenerateAccessToken(userID, email, role string, teamIDs []string) (string, error) {
	claims := AccessClaims{
		Email:   email,
		Role:    role,
		TeamIDs: teamIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.AccessSecret)
}

func GenerateRefreshToken(userID string) (string, error) {
	claims := RefreshClaims{
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.RefreshTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.RefreshSecret)
}

func ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return config.AccessSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return config.RefreshSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	if claims.TokenType != "refresh" {
		return nil, ErrNotRefreshToken
	}
	return claims, nil
}
