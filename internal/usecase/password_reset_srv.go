package usecase

import (
	"context"
	"strings"
	"time"

	"finance-tracker/internal/data/entity"
	"finance-tracker/internal/data/repository"
	"finance-tracker/internal/dto/request"
	"finance-tracker/pkg/utils"

	"go.uber.org/zap"
)

type PasswordResetService interface {
	Request(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) error
	Reset(ctx context.Context, req *request.ResetPasswordRequest) error
}

type passwordResetService struct {
	repo   *repository.Repository
	mailer Mailer
	config *utils.Config
	now    func() time.Time
	log    *zap.Logger
}

func NewPasswordResetService(repo *repository.Repository, mailer Mailer, config *utils.Config, log *zap.Logger) PasswordResetService {
	return &passwordResetService{
		repo:   repo,
		mailer: mailer,
		config: config,
		now:    time.Now,
		log:    log.With(zap.String("service", "password_reset")),
	}
}

// Request mails a reset link when the email is known and is silent otherwise.
func (s *passwordResetService) Request(ctx context.Context, email string) error {
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return internalError(err)
	}
	if user == nil {
		return nil
	}

	token, err := utils.GenerateRandomToken(32)
	if err != nil {
		return internalError(err)
	}
	digest := utils.DigestToken(token)
	expiresAt := s.now().Add(s.config.Security.ResetTTL)
	user.ResetTokenHash = &digest
	user.ResetExpiresAt = &expiresAt
	user.Touch(s.now())

	if err := s.repo.User.Update(ctx, user); err != nil {
		return internalError(err)
	}

	link := strings.TrimRight(s.config.App.FrontendURL, "/") + "/reset-password?token=" + token
	if err := s.mailer.SendPasswordReset(ctx, email, user.Name, link); err != nil {
		return internalError(err)
	}
	return nil
}

func (s *passwordResetService) Verify(ctx context.Context, token string) error {
	_, err := s.findByToken(ctx, token)
	return err
}

// Reset sets the new password, clears the token and revokes every session.
func (s *passwordResetService) Reset(ctx context.Context, req *request.ResetPasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationError(utils.FormatValidationErrors(errs))
	}

	user, err := s.findByToken(ctx, req.Token)
	if err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(req.Password, s.config.Security.BcryptCost)
	if err != nil {
		return internalError(err)
	}

	user.PasswordHash = hashedPassword
	user.ResetTokenHash = nil
	user.ResetExpiresAt = nil
	user.Touch(s.now())

	if err := s.repo.User.Update(ctx, user); err != nil {
		return internalError(err)
	}

	n, err := s.repo.Session.RevokeAllForUser(ctx, user.ID)
	if err != nil {
		return internalError(err)
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()), zap.Int64("sessions_revoked", n))
	return nil
}

func (s *passwordResetService) findByToken(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrInvalidResetToken
	}

	user, err := s.repo.User.FindByResetHash(ctx, utils.DigestToken(token))
	if err != nil {
		return nil, internalError(err)
	}
	if user == nil || user.ResetExpiresAt == nil || !user.ResetExpiresAt.After(s.now()) {
		return nil, ErrInvalidResetToken
	}
	return user, nil
}
