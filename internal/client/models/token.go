package models

import "time"

// AuthToken is the single local session record: at most one exists,
// overwritten on login and deleted on logout or detected expiry.
type AuthToken struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// Valid reports whether the token is present and not yet expired. A valid
// token is necessary and sufficient for the authenticated state.
func (t *AuthToken) Valid(now time.Time) bool {
	return t != nil && t.Token != "" && t.ExpiresAt.After(now)
}
