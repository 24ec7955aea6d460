package response

import (
	"time"

	"finance-tracker/internal/data/entity"
)

type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

type TransactionResponse struct {
	ID           string    `json:"id"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Amount       float64   `json:"amount"`
	Type         string    `json:"type"`
	Date         string    `json:"date"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

func CategoryToResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Color:     c.Color,
		Icon:      c.Icon,
		CreatedAt: c.CreatedAt,
	}
}

func TransactionToResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID.String(),
		CategoryID:   t.CategoryID.String(),
		CategoryName: t.CategoryName,
		Amount:       t.Amount,
		Type:         string(t.Type),
		Date:         t.Date.Format("2006-01-02"),
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}
