package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Note is a free-text annotation attached to exactly one maintenance order.
type Note struct {
	bun.BaseModel `bun:"table:order_notes"`

	ID        int64     `bun:",pk,autoincrement"`
	OrderID   int64     `bun:"order_id,notnull"`
	Note      string    `bun:"note,notnull"`
	CreatedBy string    `bun:"created_by"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
