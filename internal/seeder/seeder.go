package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/maintenance/internal/database"
	"github.com/Additional-Code/maintenance/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Orders seeds example maintenance orders if they are missing.
func (s *Seeder) Orders(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Order{
		{
			AssetID:     "123e4567-e89b-12d3-a456-426614174000",
			Description: "Routine inspection",
			Status:      entity.StatusPending,
			Priority:    3,
			PlacedBy:    "seed-user",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			AssetID:     "223e4567-e89b-12d3-a456-426614174001",
			Description: "Hydraulic pump replacement",
			Status:      entity.StatusInProgress,
			Priority:    5,
			PlacedBy:    "seed-user",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	for _, sample := range samples {
		order := sample
		_, err := s.db.NewInsert().Model(&order).
			On("CONFLICT (asset_id) WHERE status IN ('PENDING', 'IN_PROGRESS') DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded maintenance orders", zap.Int("count", len(samples)))
	}
	return nil
}
