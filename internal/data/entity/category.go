package entity

import "github.com/google/uuid"

type Category struct {
	Record
	UserID uuid.UUID `db:"user_id"`
	Name   string    `db:"name"`
	Color  string    `db:"color"`
	Icon   string    `db:"icon"`
}
