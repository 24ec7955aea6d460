package response

import (
	"time"

	"finance-tracker/internal/data/entity"
)

type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	UserName      string    `json:"user_name"`
	Email         *string   `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// TokenResponse never carries the session row itself, only its id.
type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	SessionID        string    `json:"session_id"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// AuthResponse has nil Tokens when the account still needs email verification.
type AuthResponse struct {
	User                 UserResponse   `json:"user"`
	Tokens               *TokenResponse `json:"tokens"`
	RequiresVerification bool           `json:"requires_verification"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	UserAgent *string   `json:"user_agent"`
	IPAddress *string   `json:"ip_address"`
	Location  *string   `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsCurrent bool      `json:"is_current"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:            user.ID.String(),
		Name:          user.Name,
		UserName:      user.UserName,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}
}

func SessionToResponse(s *entity.Session, current bool) SessionResponse {
	return SessionResponse{
		ID:        s.ID.String(),
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		Location:  s.Location,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		IsCurrent: current,
	}
}
