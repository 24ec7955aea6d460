package repository

import (
	"finance-tracker/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User        UserRepository
	Session     SessionRepository
	Category    CategoryRepository
	Transaction TransactionRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db, log),
		Session:     NewSessionRepository(db, log),
		Category:    NewCategoryRepository(db, log),
		Transaction: NewTransactionRepository(db, log),
	}
}
