package models

import "time"

// User is a registered account. PasswordHash is a bcrypt hash; the plain
// password is never stored.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// OTPRecord is a pending email verification code. A resend overwrites the
// previous record; verification consumes it.
type OTPRecord struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the code is past its expiry at the given time.
func (o OTPRecord) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
