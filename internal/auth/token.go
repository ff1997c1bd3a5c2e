package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the exp claim from a bearer token without verifying
// its signature. The token is issued and verified upstream; locally we only
// read claims for diagnostics and cookie-refresh hinting, so an unparsable
// token simply reports no expiry.
func TokenExpiry(token string) (time.Time, bool) {
	claims := tokenClaims(token)
	if claims == nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// TokenSubject extracts the sub claim without verification.
func TokenSubject(token string) (string, bool) {
	claims := tokenClaims(token)
	if claims == nil || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

func tokenClaims(token string) *jwt.RegisteredClaims {
	var claims jwt.RegisteredClaims
	p := jwt.NewParser()
	if _, _, err := p.ParseUnverified(token, &claims); err != nil {
		return nil
	}
	return &claims
}
