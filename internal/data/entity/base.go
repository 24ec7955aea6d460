package entity

import (
	"time"

	"github.com/google/uuid"
)

// Record is embedded by rows that are edited in place.
type Record struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewRecord(now time.Time) Record {
	return Record{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (r *Record) Touch(now time.Time) {
	r.UpdatedAt = now
}

// AppendOnly is embedded by rows without updated_at.
type AppendOnly struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}

func NewAppendOnly(now time.Time) AppendOnly {
	return AppendOnly{ID: uuid.New(), CreatedAt: now}
}
