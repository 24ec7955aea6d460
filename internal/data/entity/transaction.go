package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

type Transaction struct {
	Record
	UserID      uuid.UUID       `db:"user_id"`
	CategoryID  uuid.UUID       `db:"category_id"`
	Amount      float64         `db:"amount"`
	Type        TransactionType `db:"type"`
	Date        time.Time       `db:"date"`
	Description *string         `db:"description"`

	// CategoryName is joined in on reads.
	CategoryName string `db:"category_name"`
}
