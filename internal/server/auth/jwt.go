// Package auth issues and verifies the identity tokens presented by brokers
// and admins. Tokens are HS256 JWTs carrying the user's email and roles.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// AppMetadata mirrors the identity provider's app_metadata claim.
type AppMetadata struct {
	Roles []string `json:"roles"`
}

// Claims are the registered claims plus the identity fields we rely on.
type Claims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email"`
	AppMetadata AppMetadata `json:"app_metadata"`
}

// Identity is the verified caller attached to a request.
type Identity struct {
	Email string
	Roles []string
}

// HasRole reports whether the identity carries any of the given roles.
func (i Identity) HasRole(roles ...string) bool {
	return common.HasRole(i.Roles, roles...)
}

func GenerateToken(email string, roles []string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email:       email,
		AppMetadata: AppMetadata{Roles: roles},
	})

	s, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// ParseToken verifies tokenString and returns the identity in it.
// Expired tokens yield common.ErrTokenExpired, everything else that fails
// verification yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, common.ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Email == "" {
		return Identity{}, common.ErrInvalidToken
	}

	return Identity{Email: claims.Email, Roles: claims.AppMetadata.Roles}, nil
}
