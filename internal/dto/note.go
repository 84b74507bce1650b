package dto

import (
	"time"

	"github.com/Additional-Code/maintenance/internal/directory"
)

// NoteResponse represents an order note with its author enriched.
type NoteResponse struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	Note      string          `json:"note"`
	CreatedBy *directory.User `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}
