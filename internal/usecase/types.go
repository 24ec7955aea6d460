package usecase

import (
	"time"

	"finance-tracker/internal/data/entity"

	"github.com/google/uuid"
)

// DeviceInfo describes the client a session is issued to.
type DeviceInfo struct {
	UserAgent string
	IPAddress string
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	SessionID        uuid.UUID
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Principal is the authenticated caller of a request. SessionID is uuid.Nil
// for access tokens minted without a session.
type Principal struct {
	User      *entity.User
	SessionID uuid.UUID
}
