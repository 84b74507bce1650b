package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// OrderStatus enumerates the lifecycle states of a maintenance order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusCompleted  OrderStatus = "COMPLETED"
)

// OpenStatuses lists the states in which an order still blocks new orders
// against the same asset.
func OpenStatuses() []OrderStatus {
	return []OrderStatus{StatusPending, StatusInProgress}
}

// Valid reports whether the status belongs to the closed status set.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Order represents a maintenance work order against a single asset.
type Order struct {
	bun.BaseModel `bun:"table:maintenance_orders"`

	ID          int64       `bun:",pk,autoincrement"`
	AssetID     string      `bun:"asset_id,notnull"`
	Description string      `bun:"description,notnull"`
	Status      OrderStatus `bun:"status,notnull"`
	Priority    int         `bun:"priority,notnull"`
	PlacedBy    string      `bun:"placed_by"`
	CompletedBy string      `bun:"completed_by,nullzero"`
	CreatedAt   time.Time   `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time   `bun:"updated_at,nullzero"`
}
