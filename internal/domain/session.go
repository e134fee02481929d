package domain

import "time"

// GuestSession is the short-lived unauthenticated token TMDB issues for
// rating writes. Created lazily, cached until expiry, never mutated.
type GuestSession struct {
	ID        string    `json:"guest_session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Live reports whether the session is usable at the given instant.
func (s GuestSession) Live(now time.Time) bool {
	return s.ID != "" && now.Before(s.ExpiresAt)
}
