package adaptor

import (
	"finance-tracker/internal/usecase"
	"finance-tracker/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth          *AuthHandler
	Session       *SessionHandler
	User          *UserHandler
	PasswordReset *PasswordResetHandler
	Category      *CategoryHandler
	Transaction   *TransactionHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	cookies := newRefreshCookie(config)

	return &Handler{
		Auth:          NewAuthHandler(service.Auth, cookies, log),
		Session:       NewSessionHandler(service.Session, log),
		User:          NewUserHandler(service.User, cookies, log),
		PasswordReset: NewPasswordResetHandler(service.PasswordReset, log),
		Category:      NewCategoryHandler(service.Category, log),
		Transaction:   NewTransactionHandler(service.Transaction, log),
	}
}
