package jwtclaims

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs tokens the Verifier accepts.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer signing with secret. Tokens carry issuer as
// "iss" and expire after ttl.
func NewIssuer(secret []byte, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for subject.
func (i *Issuer) Issue(subject string, roles, permissions []string) (string, error) {
	now := i.now()
	claims := Claims{
		Roles:       roles,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}
