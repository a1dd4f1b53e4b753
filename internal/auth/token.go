package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified caller of an authenticated API request.
type Identity struct {
	UserID string
	Name   string
	Phone  string
}

type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// VerifyToken validates a bearer credential and returns the caller identity.
// Subscribing to realtime topics never goes through here; only mutating API
// calls are authenticated.
func VerifyToken(secret, tokenString string) (*Identity, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, errors.New("token expired")
	}

	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return &Identity{
		UserID: claims.Subject,
		Name:   claims.Name,
		Phone:  claims.Phone,
	}, nil
}
