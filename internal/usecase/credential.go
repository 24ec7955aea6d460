package usecase

import (
	"context"

	"finance-tracker/internal/data/entity"
	"finance-tracker/internal/data/repository"
	"finance-tracker/pkg/utils"

	"go.uber.org/zap"
)

// CredentialVerifier checks an identifier/password pair. It never writes.
type CredentialVerifier interface {
	Verify(ctx context.Context, identifier, password string) (*entity.User, error)
}

type credentialVerifier struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewCredentialVerifier(users repository.UserRepository, log *zap.Logger) CredentialVerifier {
	return &credentialVerifier{
		users: users,
		log:   log.With(zap.String("service", "credential")),
	}
}

// Verify resolves identifier as user name or email, then checks the password
// and finally the verification gate. Accounts without an email are never gated.
func (v *credentialVerifier) Verify(ctx context.Context, identifier, password string) (*entity.User, error) {
	user, err := v.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, internalError(err)
	}
	if user == nil {
		v.log.Warn("Login for unknown identifier")
		return nil, ErrAccountNotFound
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		v.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	if user.RequiresVerification() {
		v.log.Info("Login blocked until email is verified", zap.String("user_id", user.ID.String()))
		return nil, ErrEmailNotVerified
	}

	return user, nil
}
