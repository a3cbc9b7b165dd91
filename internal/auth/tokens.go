// Package auth issues and validates the bearer credentials that front every
// authenticated endpoint, and hashes account passwords.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL matches the original 24-hour session length.
const DefaultTokenTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
)

// AccessTokenClaims are the claims carried by an access token. Subject is the
// account id.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 access tokens.
type TokenIssuer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Issue signs a token for the given account id.
func (t *TokenIssuer) Issue(accountID string) (string, error) {
	if len(t.Secret) == 0 {
		return "", errors.New("missing signing secret")
	}

	ttl := t.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.Issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.Secret)
}

// Validate parses and verifies a token, returning the account id it was
// issued for.
func (t *TokenIssuer) Validate(tokenString string) (string, error) {
	if len(t.Secret) == 0 {
		return "", errors.New("missing signing secret")
	}

	claims := &AccessTokenClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(tk *jwt.Token) (interface{}, error) {
		if tk.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	if t.Issuer != "" && claims.Issuer != t.Issuer {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
