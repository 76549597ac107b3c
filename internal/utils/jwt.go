package utils // package utils provides helper functions for token creation and hashing

import (
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its
// expiry. The Token field contains the JWT string. Access tokens are
// sent in the Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user. The JWT
// carries the standard claims subject (sub), expiration (exp) and
// issued at (iat), plus the user's role for the role middleware.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
