// Package token verifies caller identity tokens at the boundary. The core
// trusts the resolved identity unconditionally; issuance happens in a
// separate identity service.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"amparo/internal/platform/middleware"
)

// HSValidator validates HS256-signed bearer tokens.
type HSValidator struct {
	signingKey []byte
}

// NewHSValidator builds a validator for the shared signing key.
func NewHSValidator(signingKey string) *HSValidator {
	return &HSValidator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a bearer token, returning the caller
// claims the middleware injects into the request context.
func (v *HSValidator) ValidateToken(tokenString string) (*middleware.Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	role, _ := claims["role"].(string)
	return &middleware.Claims{ActorID: sub, Role: role}, nil
}
