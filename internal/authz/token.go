package authz

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/projecthub-api/internal/models"
)

// ErrInvalidClaims indicates a verified token that does not name a usable caller.
var ErrInvalidClaims = errors.New("token does not identify a caller")

// Claims is the payload of access and refresh tokens. The subject is the
// decimal user id.
type Claims struct {
	Role string `json:"role"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// NewClaims builds the claims for a token of the given type.
func NewClaims(identity Identity, tokenType string, issuedAt, expiresAt time.Time) Claims {
	return Claims{
		Role: string(identity.Role),
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(identity.ID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

// Identity resolves the caller named by the claims.
func (c Claims) Identity() (Identity, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Subject), 10, 64)
	if err != nil || id == 0 {
		return Identity{}, fmt.Errorf("%w: subject %q", ErrInvalidClaims, c.Subject)
	}

	role := models.Role(strings.ToLower(strings.TrimSpace(c.Role)))
	if !role.Valid() {
		return Identity{}, fmt.Errorf("%w: role %q", ErrInvalidClaims, c.Role)
	}

	return Identity{ID: uint(id), Role: role}, nil
}

// SignToken issues an HS256 token for the identity.
func SignToken(identity Identity, tokenType, secret string, issuedAt, expiresAt time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("signing secret for %s tokens is not configured", tokenType)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, NewClaims(identity, tokenType, issuedAt, expiresAt)).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// ParseToken verifies signature, expiry and type, and returns the caller.
func ParseToken(raw, tokenType, secret string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, err
	}
	if claims.Type != tokenType {
		return Identity{}, fmt.Errorf("%w: expected %s token", ErrInvalidClaims, tokenType)
	}

	return claims.Identity()
}
