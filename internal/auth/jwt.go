package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned when the stored credential is an opaque token that
// carries no readable claims.
var ErrNotJWT = errors.New("credential is not a JWT")

// Claims is what the client can read from the backend's bearer token.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Info is the display view of a credential.
type Info struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the credential carries an expiry before now.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Inspect reads the claims of a bearer credential without verifying its
// signature. The client never holds the signing key, so the result is for
// display only and never used for admission.
func Inspect(credential string) (*Info, error) {
	var claims Claims
	_, _, err := jwt.NewParser().ParseUnverified(credential, &claims)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrNotJWT
		}
		return nil, fmt.Errorf("reading credential claims: %w", err)
	}

	info := &Info{Subject: claims.Subject, Role: claims.Role}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
