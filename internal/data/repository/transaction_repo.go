package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-tracker/internal/data/entity"
	"finance-tracker/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TransactionFilter struct {
	CategoryID *uuid.UUID
	Type       *entity.TransactionType
	StartDate  *time.Time
	EndDate    *time.Time
	Search     string
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	FindByID(ctx context.Context, id, userID uuid.UUID) (*entity.Transaction, error)
	FindAll(ctx context.Context, userID uuid.UUID, filter TransactionFilter, limit, offset int) ([]*entity.Transaction, error)
	Count(ctx context.Context, userID uuid.UUID, filter TransactionFilter) (int64, error)
	Update(ctx context.Context, tx *entity.Transaction) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

const transactionSelect = `
	SELECT t.id, t.user_id, t.category_id, t.amount, t.type, t.date, t.description,
	       t.created_at, t.updated_at, c.name
	FROM transactions t
	INNER JOIN categories c ON c.id = t.category_id
`

type transactionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactionRepository(db database.PgxIface, log *zap.Logger) TransactionRepository {
	return &transactionRepository{
		db:  db,
		log: log.With(zap.String("repository", "transaction")),
	}
}

func (r *transactionRepository) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, category_id, amount, type, date, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		t.ID, t.UserID, t.CategoryID, t.Amount, t.Type, t.Date, t.Description, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create transaction", zap.Error(err), zap.String("user_id", t.UserID.String()))
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id, userID uuid.UUID) (*entity.Transaction, error) {
	query := transactionSelect + ` WHERE t.id = $1 AND t.user_id = $2`

	t, err := scanTransaction(r.db.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transaction", zap.Error(err), zap.String("transaction_id", id.String()))
		return nil, fmt.Errorf("find transaction by id: %w", err)
	}
	return t, nil
}

func (r *transactionRepository) FindAll(ctx context.Context, userID uuid.UUID, filter TransactionFilter, limit, offset int) ([]*entity.Transaction, error) {
	where, args := buildTransactionWhere(userID, filter)
	query := fmt.Sprintf("%s %s ORDER BY t.date DESC, t.created_at DESC LIMIT $%d OFFSET $%d",
		transactionSelect, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list transactions",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return transactions, nil
}

func (r *transactionRepository) Count(ctx context.Context, userID uuid.UUID, filter TransactionFilter) (int64, error) {
	where, args := buildTransactionWhere(userID, filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t `+where, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count transactions", zap.Error(err))
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return total, nil
}

func (r *transactionRepository) Update(ctx context.Context, t *entity.Transaction) error {
	query := `
		UPDATE transactions
		SET category_id = $3, amount = $4, type = $5, date = $6, description = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
	`

	_, err := r.db.Exec(ctx, query,
		t.ID, t.UserID, t.CategoryID, t.Amount, t.Type, t.Date, t.Description, t.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update transaction", zap.Error(err), zap.String("transaction_id", t.ID.String()))
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		r.log.Error("Failed to delete transaction", zap.Error(err), zap.String("transaction_id", id.String()))
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func buildTransactionWhere(userID uuid.UUID, filter TransactionFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString("WHERE t.user_id = $1")
	args := []any{userID}

	add := func(clause string, value any) {
		args = append(args, value)
		sb.WriteString(fmt.Sprintf(" AND "+clause, len(args)))
	}

	if filter.CategoryID != nil {
		add("t.category_id = $%d", *filter.CategoryID)
	}
	if filter.Type != nil {
		add("t.type = $%d", *filter.Type)
	}
	if filter.StartDate != nil {
		add("t.date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("t.date <= $%d", *filter.EndDate)
	}
	if filter.Search != "" {
		add("t.description ILIKE $%d", "%"+filter.Search+"%")
	}

	return sb.String(), args
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.CategoryID,
		&t.Amount,
		&t.Type,
		&t.Date,
		&t.Description,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
