package remote

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token attached to each request.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// ServiceClaims identify the branding client to the config service.
type ServiceClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// JWTSigner mints short-lived HS256 service tokens from a shared secret.
type JWTSigner struct {
	secret  []byte
	ttl     time.Duration
	subject string
	now     func() time.Time
}

// NewJWTSigner creates a signer. A zero ttl defaults to five minutes.
func NewJWTSigner(secret []byte, subject string, ttl time.Duration) *JWTSigner {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &JWTSigner{secret: secret, ttl: ttl, subject: subject, now: time.Now}
}

// Token signs a fresh token on every call.
func (s *JWTSigner) Token() (string, error) {
	now := s.now()
	claims := ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.subject,
			Issuer:    "brandkit",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Scope: "app-settings",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return signed, nil
}

// ParseServiceToken validates a token minted by a JWTSigner with secret.
func ParseServiceToken(secret []byte, tokenString string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*ServiceClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
