package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/maintenance/internal/database"
	"github.com/Additional-Code/maintenance/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/maintenance/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// ErrOpenOrderExists is returned when the partial unique index on open
// orders rejects a write. It backs the service-level conflict check so
// two racing creates cannot both land, and fires again when an update
// would reopen an order on an asset that already has an open one.
var ErrOpenOrderExists = errors.New("open order already exists for asset")

// Repository encapsulates read/write access for maintenance orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists a new order using the write connection.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.asset_id", order.AssetID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(order).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			span.SetStatus(codes.Error, "open order conflict")
			return ErrOpenOrderExists
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// List returns all orders, optionally filtered down to a single asset.
func (r *Repository) List(ctx context.Context, assetID string) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	var orders []entity.Order
	q := r.reader.NewSelect().Model(&orders).Order("id ASC")
	if assetID != "" {
		span.SetAttributes(attribute.String("order.asset_id", assetID))
		q = q.Where("asset_id = ?", assetID)
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// ExistsByID reports whether an order with the given id is stored.
func (r *Repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ExistsByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	exists, err := r.reader.NewSelect().Model((*entity.Order)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exists failed")
		return false, err
	}
	return exists, nil
}

// HasOpenOrder reports whether the asset already has an order in one of the
// open statuses.
func (r *Repository) HasOpenOrder(ctx context.Context, assetID string) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.HasOpenOrder", trace.WithAttributes(attribute.String("order.asset_id", assetID)))
	defer span.End()

	exists, err := r.reader.NewSelect().
		Model((*entity.Order)(nil)).
		Where("asset_id = ?", assetID).
		Where("status IN (?)", bun.In(entity.OpenStatuses())).
		Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exists failed")
		return false, err
	}
	return exists, nil
}

// Update rewrites the mutable columns of an existing order.
func (r *Repository) Update(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Update", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	_, err := r.writer.NewUpdate().
		Model(order).
		Column("description", "status", "priority", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			span.SetStatus(codes.Error, "open order conflict")
			return ErrOpenOrderExists
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// Delete removes an order by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	_, err := r.writer.NewDelete().Model((*entity.Order)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
