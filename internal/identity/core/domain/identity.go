package domain

import "time"

// Identity is the realtime-store identity every subscription runs under.
type Identity struct {
	UID       string
	Token     string
	Anonymous bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Valid reports whether the identity can still be used at now.
func (i *Identity) Valid(now time.Time) bool {
	if i == nil || i.UID == "" {
		return false
	}
	return i.ExpiresAt.IsZero() || now.Before(i.ExpiresAt)
}
