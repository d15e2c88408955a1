package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is a display-only view of a token's claims.
type TokenInfo struct {
	Subject   string     `json:"subject,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token carries an expiry that lies before now.
func (i TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}

// Inspect peeks at JWT claims without verifying the signature. The token stays
// opaque to every other part of the client; ok is false for non-JWT tokens.
func Inspect(token string) (TokenInfo, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, false
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	for _, key := range []string{"id", "userId", "user_id", "_id"} {
		if v, ok := claims[key].(string); ok && v != "" {
			info.UserID = v
			break
		}
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	return info, true
}
