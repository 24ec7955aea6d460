package entity

import "time"

type User struct {
	Record
	Name                  string     `db:"name"`
	UserName              string     `db:"user_name"`
	Email                 *string    `db:"email"`
	PasswordHash          string     `db:"password"`
	EmailVerified         bool       `db:"email_verified"`
	VerificationTokenHash *string    `db:"verification_token_hash"`
	VerificationExpiresAt *time.Time `db:"verification_expires_at"`
	ResetTokenHash        *string    `db:"reset_token_hash"`
	ResetExpiresAt        *time.Time `db:"reset_expires_at"`
}

// HasEmail is false for guest accounts.
func (u *User) HasEmail() bool {
	return u.Email != nil && *u.Email != ""
}

// RequiresVerification blocks login until the email is confirmed.
// Guest accounts never require it.
func (u *User) RequiresVerification() bool {
	return u.HasEmail() && !u.EmailVerified
}
