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

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	CreateBatch(ctx context.Context, categories []*entity.Category) error
	FindByID(ctx context.Context, id, userID uuid.UUID) (*entity.Category, error)
	FindByName(ctx context.Context, userID uuid.UUID, name string) (*entity.Category, error)
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountTransactions(ctx context.Context, id uuid.UUID) (int64, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type categoryRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCategoryRepository(db database.PgxIface, log *zap.Logger) CategoryRepository {
	return &categoryRepository{
		db:  db,
		log: log.With(zap.String("repository", "category")),
	}
}

const insertCategory = `
	INSERT INTO categories (id, user_id, name, color, icon, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	_, err := r.db.Exec(ctx, insertCategory,
		category.ID,
		category.UserID,
		category.Name,
		category.Color,
		category.Icon,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create category", zap.Error(err), zap.String("user_id", category.UserID.String()))
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// CreateBatch inserts all categories in one transaction.
func (r *categoryRepository) CreateBatch(ctx context.Context, categories []*entity.Category) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin category batch: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range categories {
		batch.Queue(insertCategory, c.ID, c.UserID, c.Name, c.Color, c.Icon, c.CreatedAt, c.UpdatedAt)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		r.log.Error("Failed to insert category batch", zap.Error(err))
		return fmt.Errorf("insert category batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit category batch: %w", err)
	}
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id, userID uuid.UUID) (*entity.Category, error) {
	query := `SELECT id, user_id, name, color, icon, created_at, updated_at
		FROM categories WHERE id = $1 AND user_id = $2`

	category, err := scanCategory(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		r.log.Error("Failed to find category by ID", zap.Error(err), zap.String("category_id", id.String()))
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return category, nil
}

func (r *categoryRepository) FindByName(ctx context.Context, userID uuid.UUID, name string) (*entity.Category, error) {
	query := `SELECT id, user_id, name, color, icon, created_at, updated_at
		FROM categories WHERE user_id = $1 AND name = $2`

	category, err := scanCategory(r.db.QueryRow(ctx, query, userID, name))
	if err != nil {
		r.log.Error("Failed to find category by name", zap.Error(err))
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return category, nil
}

func (r *categoryRepository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	query := `SELECT id, user_id, name, color, icon, created_at, updated_at
		FROM categories WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list categories", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*entity.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return total, nil
}

func (r *categoryRepository) CountTransactions(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE category_id = $1`, id).Scan(&total); err != nil {
		return 0, fmt.Errorf("count category transactions: %w", err)
	}
	return total, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	query := `UPDATE categories SET name = $3, color = $4, icon = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2`

	_, err := r.db.Exec(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		category.Color,
		category.Icon,
		category.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update category", zap.Error(err), zap.String("category_id", category.ID.String()))
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		r.log.Error("Failed to delete category", zap.Error(err), zap.String("category_id", id.String()))
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
