package usecase

import (
	"context"
	"time"

	"finance-tracker/internal/data/entity"
	"finance-tracker/internal/data/repository"
	"finance-tracker/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenService issues token pairs backed by a session row and rotates them.
type TokenService interface {
	Issue(ctx context.Context, user *entity.User, device DeviceInfo) (*TokenPair, error)
	Rotate(ctx context.Context, refreshToken string, device DeviceInfo) (*TokenPair, *entity.User, error)
}

type tokenService struct {
	repo       *repository.Repository
	signer     *utils.TokenSigner
	refreshTTL time.Duration
	now        func() time.Time
	log        *zap.Logger
}

func NewTokenService(repo *repository.Repository, signer *utils.TokenSigner, config utils.JWTConfig, log *zap.Logger) TokenService {
	return &tokenService{
		repo:       repo,
		signer:     signer,
		refreshTTL: config.RefreshTTL,
		now:        time.Now,
		log:        log.With(zap.String("service", "token")),
	}
}

// Issue persists a new session and returns the pair that references it.
// The refresh token expiry and the session expiry are the same instant.
func (s *tokenService) Issue(ctx context.Context, user *entity.User, device DeviceInfo) (*TokenPair, error) {
	now := s.now()
	expiresAt := now.Add(s.refreshTTL).Truncate(time.Second)

	refreshToken, err := s.signer.SignRefresh(user.ID, expiresAt)
	if err != nil {
		return nil, internalError(err)
	}

	session := &entity.Session{
		AppendOnly: entity.NewAppendOnly(now),
		UserID:    user.ID,
		TokenHash: utils.DigestToken(refreshToken),
		Token:     refreshToken,
		UserAgent: optional(device.UserAgent),
		IPAddress: optional(device.IPAddress),
		Location:  optional(utils.LocationFor(device.IPAddress)),
		ExpiresAt: expiresAt,
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, internalError(err)
	}

	accessToken, accessExpiresAt, err := s.signer.SignAccess(user.ID, user.UserName, session.ID)
	if err != nil {
		return nil, internalError(err)
	}

	s.log.Info("Session issued",
		zap.String("user_id", user.ID.String()),
		zap.String("session_id", session.ID.String()),
	)

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		SessionID:        session.ID,
		AccessExpiresAt:  accessExpiresAt,
		RefreshExpiresAt: expiresAt,
	}, nil
}

// Rotate exchanges a refresh token for a new pair. The old session is claimed
// (revoked) in the same statement that checks it is live, so of two
// concurrent rotations of one token only one gets a new pair. A failure after
// the claim leaves the caller logged out.
func (s *tokenService) Rotate(ctx context.Context, refreshToken string, device DeviceInfo) (*TokenPair, *entity.User, error) {
	claims, err := s.signer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	session, err := s.repo.Session.ClaimLiveByHash(ctx, utils.DigestToken(refreshToken), userID)
	if err != nil {
		return nil, nil, internalError(err)
	}
	if session == nil {
		// Unknown, revoked, expired and reused tokens all end here.
		s.log.Warn("Refresh token is not live", zap.String("user_id", userID.String()))
		return nil, nil, ErrInvalidToken
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, internalError(err)
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	pair, err := s.Issue(ctx, user, device)
	if err != nil {
		s.log.Error("Issue after claim failed; session is gone",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
			zap.String("session_id", session.ID.String()),
		)
		return nil, nil, err
	}

	return pair, user, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
