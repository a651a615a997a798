// Package session mints platform session tokens bound to an identity-provider
// session and tracks which are active in a revocable store (Redis or memory).
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed, expired, or revoked.
var ErrInvalidToken = errors.New("invalid session token")

// Claims holds JWT claims for the platform session token. Subject is the local
// user id; ProviderSessionID binds the token to the identity-provider session
// so the gate can resolve the principal.
type Claims struct {
	jwt.RegisteredClaims
	ProviderSessionID string `json:"psid"`
}

// TokenProvider issues and validates platform session JWTs using HS256.
type TokenProvider struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given secret.
// issuer and audience are set on claims and validated on every parse.
func NewTokenProvider(secret []byte, issuer, audience string, ttl time.Duration) *TokenProvider {
	return &TokenProvider{secret: secret, issuer: issuer, audience: audience, ttl: ttl}
}

// TTL returns the configured session lifetime.
func (p *TokenProvider) TTL() time.Duration { return p.ttl }

// Issue signs a session token for the given user bound to providerSessionID.
// Returns the token string, its jti (used as the store key), and expiry.
func (p *TokenProvider) Issue(providerSessionID, userID string) (token, jti string, expiresAt time.Time, err error) {
	jti, err = generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		ProviderSessionID: providerSessionID,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(p.secret)
	return token, jti, expiresAt, err
}

// Validate parses and verifies a session token. Returns its claims or ErrInvalidToken.
func (p *TokenProvider) Validate(token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer), jwt.WithAudience(p.audience), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
