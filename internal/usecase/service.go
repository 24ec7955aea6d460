package usecase

import (
	"finance-tracker/internal/data/repository"
	"finance-tracker/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Guard         AccessGuard
	Tokens        TokenService
	Auth          AuthService
	Session       SessionService
	User          UserService
	PasswordReset PasswordResetService
	Category      CategoryService
	Transaction   TransactionService
}

func NewService(repo *repository.Repository, mailer Mailer, config *utils.Config, log *zap.Logger) *Service {
	signer := utils.NewTokenSigner(config.JWT)
	tokens := NewTokenService(repo, signer, config.JWT, log)
	categories := NewCategoryService(repo.Category, log)

	return &Service{
		Guard:         NewAccessGuard(repo, signer, log),
		Tokens:        tokens,
		Auth:          NewAuthService(repo, NewCredentialVerifier(repo.User, log), tokens, categories, mailer, config, log),
		Session:       NewSessionService(repo.Session, log),
		User:          NewUserService(repo, mailer, config, log),
		PasswordReset: NewPasswordResetService(repo, mailer, config, log),
		Category:      categories,
		Transaction:   NewTransactionService(repo, log),
	}
}
