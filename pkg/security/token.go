package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultTokenTTL = 24 * time.Hour

	tokenTypeAuth = "auth"
)

var (
	ErrTokenInvalid = errors.New("authorization token invalid")
	ErrTokenExpired = errors.New("authorization token expired")
)

type AuthClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens. Tokens are not stored
// anywhere, their validity is the signature plus the exp claim.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

func (t *TokenIssuer) Issue(userID, role string) (string, error) {
	now := t.now()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		UserID: userID,
		Role:   role,
		Type:   tokenTypeAuth,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	s, err := tok.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token, %w", err)
	}

	return s, nil
}

// Parse verifies the signature and expiry of tokenStr and returns its claims
func (t *TokenIssuer) Parse(tokenStr string) (*AuthClaims, error) {
	claims := &AuthClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (any, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", tok.Method.Alg())
		}

		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrTokenInvalid
	}

	if !token.Valid || claims.Type != tokenTypeAuth || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
