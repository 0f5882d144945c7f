// Package auth obtains a Google identity for the backend sign-in exchange.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"chatwave/gateway"
)

// ErrInvalidIDToken is returned for tokens that do not decode to a usable identity
var ErrInvalidIDToken = errors.New("invalid ID token")

// Identity is what the backend needs to know about a Google account
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
	IDToken string
}

// Profile converts the identity to the backend's login payload
func (id Identity) Profile() gateway.GoogleProfile {
	return gateway.GoogleProfile{
		Email:    id.Email,
		Name:     id.Name,
		Avatar:   id.Picture,
		GoogleID: id.Subject,
	}
}

// DecodeIDToken reads the profile claims from a Google ID token. The signature
// is not checked here; the backend verifies the assertion.
func DecodeIDToken(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, ErrInvalidIDToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, fmt.Errorf("%w: missing sub claim", ErrInvalidIDToken)
	}

	return Identity{
		Subject: sub,
		Email:   stringClaim(claims, "email"),
		Name:    stringClaim(claims, "name"),
		Picture: stringClaim(claims, "picture"),
		IDToken: raw,
	}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
