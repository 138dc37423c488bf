package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base is embedded by soft-deleted rows.
type Base struct {
	ID        uuid.UUID  `db:"id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (b Base) Deleted() bool {
	return b.DeletedAt != nil
}

// BaseSimple is embedded by append-only rows: sessions and codes.
type BaseSimple struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}
