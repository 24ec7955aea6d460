package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is one row of refresh_tokens. Rows are never updated except to set
// IsRevoked, and are only deleted by cascade with their user.
type Session struct {
	AppendOnly
	UserID    uuid.UUID `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	Token     string    `db:"token"` // audit only, never a lookup key
	UserAgent *string   `db:"user_agent"`
	IPAddress *string   `db:"ip_address"`
	Location  *string   `db:"location"`
	ExpiresAt time.Time `db:"expires_at"`
	IsRevoked bool      `db:"is_revoked"`
}

func (s *Session) IsLive(now time.Time) bool {
	return !s.IsRevoked && s.ExpiresAt.After(now)
}
