package repository

import (
	"context"
	"errors"
	"fmt"

	"finance-tracker/internal/data/entity"
	"finance-tracker/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUserName(ctx context.Context, userName string) (*entity.User, error)
	FindByVerificationHash(ctx context.Context, tokenHash string) (*entity.User, error)
	FindByResetHash(ctx context.Context, tokenHash string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const userColumns = `id, name, user_name, email, password, email_verified,
	verification_token_hash, verification_expires_at, reset_token_hash, reset_expires_at,
	created_at, updated_at`

// ErrUserNotFound is returned by Update and Delete when no row matched.
var ErrUserNotFound = errors.New("user not found")

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

// Create inserts a new user record into the database
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, name, user_name, email, password, email_verified,
		                   verification_token_hash, verification_expires_at,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Name,
		user.UserName,
		user.Email,
		user.PasswordHash,
		user.EmailVerified,
		user.VerificationTokenHash,
		user.VerificationExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("user_name", user.UserName),
		)
		return fmt.Errorf("create user %s: %w", user.UserName, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := ur.findOne(ctx, `WHERE id = $1`, id)
	if err != nil {
		ur.log.Error("Failed to find user by ID", zap.Error(err), zap.String("user_id", id.String()))
		return nil, fmt.Errorf("find user by ID %s: %w", id, err)
	}
	return user, nil
}

// FindByIdentifier matches either the user name or the email.
func (ur *userRepository) FindByIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	user, err := ur.findOne(ctx, `WHERE user_name = $1 OR email = $1 LIMIT 1`, identifier)
	if err != nil {
		ur.log.Error("Failed to find user by identifier", zap.Error(err))
		return nil, fmt.Errorf("find user by identifier: %w", err)
	}
	return user, nil
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := ur.findOne(ctx, `WHERE email = $1`, email)
	if err != nil {
		ur.log.Error("Failed to find user by email", zap.Error(err))
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (ur *userRepository) FindByUserName(ctx context.Context, userName string) (*entity.User, error) {
	user, err := ur.findOne(ctx, `WHERE user_name = $1`, userName)
	if err != nil {
		ur.log.Error("Failed to find user by user name", zap.Error(err), zap.String("user_name", userName))
		return nil, fmt.Errorf("find user by user name %s: %w", userName, err)
	}
	return user, nil
}

func (ur *userRepository) FindByVerificationHash(ctx context.Context, tokenHash string) (*entity.User, error) {
	user, err := ur.findOne(ctx, `WHERE verification_token_hash = $1`, tokenHash)
	if err != nil {
		ur.log.Error("Failed to find user by verification token", zap.Error(err))
		return nil, fmt.Errorf("find user by verification token: %w", err)
	}
	return user, nil
}

func (ur *userRepository) FindByResetHash(ctx context.Context, tokenHash string) (*entity.User, error) {
	user, err := ur.findOne(ctx, `WHERE reset_token_hash = $1`, tokenHash)
	if err != nil {
		ur.log.Error("Failed to find user by reset token", zap.Error(err))
		return nil, fmt.Errorf("find user by reset token: %w", err)
	}
	return user, nil
}

func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET name = $2, user_name = $3, email = $4, password = $5, email_verified = $6,
		    verification_token_hash = $7, verification_expires_at = $8,
		    reset_token_hash = $9, reset_expires_at = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Name,
		user.UserName,
		user.Email,
		user.PasswordHash,
		user.EmailVerified,
		user.VerificationTokenHash,
		user.VerificationExpiresAt,
		user.ResetTokenHash,
		user.ResetExpiresAt,
		user.UpdatedAt,
	)
	if err != nil {
		ur.log.Error("Failed to update user", zap.Error(err), zap.String("user_id", user.ID.String()))
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update user %s: %w", user.ID, ErrUserNotFound)
	}

	return nil
}

// Delete removes the user; sessions, categories and transactions go with it
// through ON DELETE CASCADE.
func (ur *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := ur.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		ur.log.Error("Failed to delete user", zap.Error(err), zap.String("user_id", id.String()))
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete user %s: %w", id, ErrUserNotFound)
	}

	ur.log.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

func (ur *userRepository) findOne(ctx context.Context, where string, args ...any) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` + where

	var user entity.User
	err := ur.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.UserName,
		&user.Email,
		&user.PasswordHash,
		&user.EmailVerified,
		&user.VerificationTokenHash,
		&user.VerificationExpiresAt,
		&user.ResetTokenHash,
		&user.ResetExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
