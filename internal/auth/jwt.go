package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenIssuer is the issuer claim of every access token.
const TokenIssuer = "JobMatch"

// JwtIssuer signs and validates access tokens with a shared HMAC secret.
type JwtIssuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

// NewJwtIssuer creates a JwtIssuer. A non-positive ttl falls back to one hour.
func NewJwtIssuer(secret string, ttl time.Duration) *JwtIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JwtIssuer{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

// GenerateStandardToken signs an access token for the principal with the default TTL.
func (i *JwtIssuer) GenerateStandardToken(id uuid.UUID) (string, error) {
	return i.GenerateTokenWithDuration(id, i.TTL)
}

// GenerateTokenWithDuration signs an access token that expires after d. Every token
// carries a random jti so it can be revoked on its own.
func (i *JwtIssuer) GenerateTokenWithDuration(id uuid.UUID, d time.Duration) (string, error) {
	if len(i.Secret) == 0 {
		return "", errors.New("signing secret is not configured")
	}
	now := i.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    TokenIssuer,
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(i.Secret)
	if err != nil {
		return "", fmt.Errorf("Failed to sign token: %s", err)
	}
	return signed, nil
}

// ValidatedToken parses encodedToken into RegisteredClaims and checks its signature
// and expiry.
func (i *JwtIssuer) ValidatedToken(encodedToken string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(encodedToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, isvalid := token.Method.(*jwt.SigningMethodHMAC); !isvalid {
			return nil, fmt.Errorf("Invalid token")
		}
		return i.Secret, nil
	})
}
