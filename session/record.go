package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthRecord is the persisted client-side session. It is created on a
// successful login (or MFA verification), has only its AccessToken replaced
// on refresh, and is destroyed on logout or irrecoverable refresh failure.
// At most one record exists at a time; absence means "anonymous".
type AuthRecord struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	MFAEnabled  bool   `json:"mfaEnabled"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Avatar      string `json:"avatar"`
}

// TokenExpiry extracts the access token's exp claim without verifying the
// signature. Verification is the backend's job; the client only needs the
// timestamp to refresh ahead of expiry. Returns false when the token is
// absent, not a JWT, or carries no exp claim.
func (r *AuthRecord) TokenExpiry() (time.Time, bool) {
	if r == nil || r.AccessToken == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(r.AccessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
