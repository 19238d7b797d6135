package models

import "time"

// VerificationRecord is the per-user email verification state. At most one
// token is active at a time; an empty Token means none is outstanding.
type VerificationRecord struct {
	UserID    string
	Verified  bool
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Clear drops the outstanding token.
func (r *VerificationRecord) Clear() {
	r.Token = ""
	r.IssuedAt = time.Time{}
	r.ExpiresAt = time.Time{}
}
