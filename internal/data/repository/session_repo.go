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

// SessionRepository is the session store. Liveness (is_revoked = false AND
// expires_at > NOW()) is always evaluated by the database, and every revoke
// is idempotent.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindLiveByHash(ctx context.Context, tokenHash string, userID uuid.UUID) (*entity.Session, error)
	FindLiveByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	ListLiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)
	// ClaimLiveByHash revokes the live session matching hash and user in one
	// statement and returns it. Of two concurrent claims only one gets a row.
	ClaimLiveByHash(ctx context.Context, tokenHash string, userID uuid.UUID) (*entity.Session, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeByID(ctx context.Context, id, userID uuid.UUID) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

const sessionColumns = `id, user_id, token_hash, token, user_agent, ip_address, location, expires_at, is_revoked, created_at`

type sessionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSessionRepository(db database.PgxIface, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "session")),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, token, user_agent, ip_address, location, expires_at, is_revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.Token,
		session.UserAgent,
		session.IPAddress,
		session.Location,
		session.ExpiresAt,
		session.IsRevoked,
		session.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create session",
			zap.Error(err),
			zap.String("user_id", session.UserID.String()),
		)
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *sessionRepository) FindLiveByHash(ctx context.Context, tokenHash string, userID uuid.UUID) (*entity.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM refresh_tokens
		WHERE token_hash = $1 AND user_id = $2 AND is_revoked = false AND expires_at > NOW()`

	session, err := scanSession(r.db.QueryRow(ctx, query, tokenHash, userID))
	if err != nil {
		r.log.Error("Failed to find session by hash", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find session by hash: %w", err)
	}
	return session, nil
}

func (r *sessionRepository) FindLiveByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM refresh_tokens
		WHERE id = $1 AND is_revoked = false AND expires_at > NOW()`

	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find session by id", zap.Error(err), zap.String("session_id", id.String()))
		return nil, fmt.Errorf("find session by id: %w", err)
	}
	return session, nil
}

func (r *sessionRepository) ListLiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM refresh_tokens
		WHERE user_id = $1 AND is_revoked = false AND expires_at > NOW()
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list sessions", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*entity.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			r.log.Error("Failed to scan session row", zap.Error(err))
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}

	return sessions, nil
}

func (r *sessionRepository) ClaimLiveByHash(ctx context.Context, tokenHash string, userID uuid.UUID) (*entity.Session, error) {
	query := `UPDATE refresh_tokens SET is_revoked = true
		WHERE token_hash = $1 AND user_id = $2 AND is_revoked = false AND expires_at > NOW()
		RETURNING ` + sessionColumns

	session, err := scanSession(r.db.QueryRow(ctx, query, tokenHash, userID))
	if err != nil {
		r.log.Error("Failed to claim session", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("claim session: %w", err)
	}
	return session, nil
}

func (r *sessionRepository) RevokeByHash(ctx context.Context, tokenHash string) error {
	query := `UPDATE refresh_tokens SET is_revoked = true WHERE token_hash = $1 AND is_revoked = false`

	if _, err := r.db.Exec(ctx, query, tokenHash); err != nil {
		r.log.Error("Failed to revoke session by hash", zap.Error(err))
		return fmt.Errorf("revoke session by hash: %w", err)
	}
	return nil
}

func (r *sessionRepository) RevokeByID(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `UPDATE refresh_tokens SET is_revoked = true
		WHERE id = $1 AND user_id = $2 AND is_revoked = false AND expires_at > NOW()`

	result, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		r.log.Error("Failed to revoke session",
			zap.Error(err),
			zap.String("session_id", id.String()),
			zap.String("user_id", userID.String()),
		)
		return false, fmt.Errorf("revoke session %s: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *sessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `UPDATE refresh_tokens SET is_revoked = true WHERE user_id = $1 AND is_revoked = false`

	result, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to revoke all sessions", zap.Error(err), zap.String("user_id", userID.String()))
		return 0, fmt.Errorf("revoke all sessions for user %s: %w", userID, err)
	}

	return result.RowsAffected(), nil
}

// scanSession returns nil, nil when there is no row.
func scanSession(row pgx.Row) (*entity.Session, error) {
	var session entity.Session
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.Token,
		&session.UserAgent,
		&session.IPAddress,
		&session.Location,
		&session.ExpiresAt,
		&session.IsRevoked,
		&session.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}
