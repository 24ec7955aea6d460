package usecase

import (
	"context"

	"finance-tracker/internal/data/repository"
	"finance-tracker/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionService interface {
	List(ctx context.Context, userID, currentSessionID uuid.UUID) ([]response.SessionResponse, error)
	Revoke(ctx context.Context, userID, sessionID uuid.UUID) error
}

type sessionService struct {
	sessions repository.SessionRepository
	log      *zap.Logger
}

func NewSessionService(sessions repository.SessionRepository, log *zap.Logger) SessionService {
	return &sessionService{
		sessions: sessions,
		log:      log.With(zap.String("service", "session")),
	}
}

// List returns the caller's live sessions, newest first, flagging the one
// currentSessionID refers to.
func (s *sessionService) List(ctx context.Context, userID, currentSessionID uuid.UUID) ([]response.SessionResponse, error) {
	sessions, err := s.sessions.ListLiveByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}

	out := make([]response.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, response.SessionToResponse(session, session.ID == currentSessionID))
	}
	return out, nil
}

func (s *sessionService) Revoke(ctx context.Context, userID, sessionID uuid.UUID) error {
	revoked, err := s.sessions.RevokeByID(ctx, sessionID, userID)
	if err != nil {
		return internalError(err)
	}
	if !revoked {
		return notFound("Session not found")
	}

	s.log.Info("Session revoked",
		zap.String("user_id", userID.String()),
		zap.String("session_id", sessionID.String()),
	)
	return nil
}
