package usecase

import (
	"context"

	"finance-tracker/internal/data/repository"
	"finance-tracker/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessGuard turns a bearer access token into a Principal.
type AccessGuard interface {
	Authenticate(ctx context.Context, accessToken string) (*Principal, error)
}

type accessGuard struct {
	repo   *repository.Repository
	signer *utils.TokenSigner
	log    *zap.Logger
}

func NewAccessGuard(repo *repository.Repository, signer *utils.TokenSigner, log *zap.Logger) AccessGuard {
	return &accessGuard{
		repo:   repo,
		signer: signer,
		log:    log.With(zap.String("service", "guard")),
	}
}

// Authenticate rejects tokens whose session is no longer live even when the
// token itself has not expired. Tokens without a sid skip the session check.
func (g *accessGuard) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	if accessToken == "" {
		return nil, ErrMissingCredential
	}

	claims, err := g.signer.ParseAccess(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	sessionID := uuid.Nil
	if claims.SessionID != "" {
		sessionID, err = uuid.Parse(claims.SessionID)
		if err != nil {
			return nil, ErrInvalidToken
		}

		session, err := g.repo.Session.FindLiveByID(ctx, sessionID)
		if err != nil {
			return nil, internalError(err)
		}
		if session == nil || session.UserID != userID {
			g.log.Warn("Access token references a dead session",
				zap.String("user_id", userID.String()),
				zap.String("session_id", sessionID.String()),
			)
			return nil, ErrSessionRevoked
		}
	}

	user, err := g.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return &Principal{User: user, SessionID: sessionID}, nil
}
