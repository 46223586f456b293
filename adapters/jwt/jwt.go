// Package jwt issues and checks the short-lived EdDSA service tokens that
// travel in the serviceToken header.
package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/abhissng/synapse/utils/random"
	"github.com/golang-jwt/jwt/v5"
)

// ErrSubjectMissing is returned when a token carries no sub claim.
var ErrSubjectMissing = errors.New("jwt: token has no subject")

// Claims represents the JWT claims
type Claims struct {
	jwt.RegisteredClaims
}

// NewJWTClaims builds claims for service, valid for ttl from now.
func NewJWTClaims(service string, ttl time.Duration, now time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   service,
			Issuer:    service,
			ID:        random.GenerateUUIDString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// GenerateJWT signs claims with key. kid, when set, goes in the header.
func GenerateJWT(claims *Claims, key ed25519.PrivateKey, kid string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	return token.SignedString(key)
}

// ParseSubject reads the sub claim without checking the signature. The
// result is only good for choosing which key to verify with.
func ParseSubject(tokenString string) (string, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", fmt.Errorf("malformed token: %w", err)
	}
	if claims.Subject == "" {
		return "", ErrSubjectMissing
	}
	return claims.Subject, nil
}

// Validator checks signature, algorithm and expiry.
type Validator struct {
	parser *jwt.Parser
}

// NewValidator returns a Validator tolerating leeway of clock skew. now may be nil.
func NewValidator(leeway time.Duration, now func() time.Time) *Validator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(leeway),
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}
	return &Validator{parser: jwt.NewParser(opts...)}
}

// ValidateJWT verifies tokenString against key and returns its claims.
func (v *Validator) ValidateJWT(tokenString string, key ed25519.PublicKey) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("jwt: token is not valid")
	}
	return claims, nil
}
