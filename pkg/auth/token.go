// pkg/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for bearer tokens that are not JWTs at all.
// Opaque tokens are legal; callers should treat this as "no claims known".
var ErrNotJWT = errors.New("token is not a JWT")

// Claims are the parts of a catalog API token the web front-end cares about.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an expiry that is not after now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Inspect reads the claims of a JWT issued by the catalog API.
// The signature is NOT verified: the signing key belongs to the API, which
// re-checks the token on every call. Inspect only serves session bookkeeping.
func Inspect(token string) (*Claims, error) {
	claims := &tokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrNotJWT
		}
		return nil, fmt.Errorf("failed to read token claims: %w", err)
	}

	out := &Claims{Subject: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
