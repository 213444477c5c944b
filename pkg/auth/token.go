package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultTokenTTL is the credential lifetime used when none is configured
const DefaultTokenTTL = time.Hour

// Claims is the JWT payload carried by every issued credential
type Claims struct {
	Role     Role   `json:"role"`
	EntityID string `json:"entity_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed identity credentials
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager signing with the given HMAC secret
func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: secret, ttl: ttl}
}

// Issue signs a credential for the given identity
func (tm *TokenManager) Issue(identity Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:     identity.Role,
		EntityID: identity.EntityID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a credential, returning the embedded identity.
// The identity is trusted downstream; no further credential checks happen
// past this point.
func (tm *TokenManager) Verify(tokenString string) (Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return Identity{}, fmt.Errorf("invalid token")
	}
	if !claims.Role.Valid() {
		return Identity{}, fmt.Errorf("unknown role in token: %s", claims.Role)
	}

	return Identity{
		UserID:   claims.Subject,
		Role:     claims.Role,
		EntityID: claims.EntityID,
	}, nil
}
