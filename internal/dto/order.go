package dto

import (
	"time"

	"github.com/Additional-Code/maintenance/internal/directory"
	"github.com/Additional-Code/maintenance/internal/entity"
)

// OrderResponse represents a maintenance order as exposed via transport
// layers, with asset and user identifiers enriched into full objects.
type OrderResponse struct {
	ID          int64              `json:"id"`
	Asset       *directory.Asset   `json:"asset"`
	Description string             `json:"description"`
	Status      entity.OrderStatus `json:"status"`
	Priority    int                `json:"priority"`
	PlacedBy    *directory.User    `json:"placed_by"`
	CompletedBy *directory.User    `json:"completed_by,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
