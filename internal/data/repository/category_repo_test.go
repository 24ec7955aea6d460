package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var categoryCols = []string{"id", "user_id", "name", "color", "icon", "created_at", "updated_at"}

func newCategoryRepo(t *testing.T) (pgxmock.PgxPoolIface, CategoryRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewCategoryRepository(mock, zap.NewNop())
}

func TestCategoryRepository_FindByID_ScopedToOwner(t *testing.T) {
	mock, repo := newCategoryRepo(t)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE id = $1 AND user_id = $2")).
		WithArgs(id, userID).
		WillReturnRows(pgxmock.NewRows(categoryCols))

	category, err := repo.FindByID(context.Background(), id, userID)
	require.NoError(t, err)
	assert.Nil(t, category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_FindAllByUser(t *testing.T) {
	mock, repo := newCategoryRepo(t)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE user_id = $1 ORDER BY name")).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(categoryCols).
			AddRow(uuid.New(), userID, "Food & Dining", "#EF4444", "🍔", now, now).
			AddRow(uuid.New(), userID, "Salary", "#10B981", "💰", now, now))

	categories, err := repo.FindAllByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Salary", categories[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_CountTransactions(t *testing.T) {
	mock, repo := newCategoryRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM transactions WHERE category_id = $1")).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := repo.CountTransactions(context.Background(), id)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Delete(t *testing.T) {
	mock, repo := newCategoryRepo(t)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1 AND user_id = $2")).
		WithArgs(id, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), id, userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
