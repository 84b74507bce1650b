package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/maintenance/internal/cache"
	"github.com/Additional-Code/maintenance/internal/config"
	"github.com/Additional-Code/maintenance/internal/directory"
	"github.com/Additional-Code/maintenance/internal/entity"
	"github.com/Additional-Code/maintenance/internal/messaging"
	repo "github.com/Additional-Code/maintenance/internal/repository/order"
	"github.com/Additional-Code/maintenance/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/maintenance/service/order")

// Store is the persistence contract the lifecycle service relies on. It is
// implemented by the order repository.
type Store interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	List(ctx context.Context, assetID string) ([]entity.Order, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	HasOpenOrder(ctx context.Context, assetID string) (bool, error)
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id int64) error
}

// Input carries the mutable order fields accepted on create and update.
type Input struct {
	AssetID     string
	Description string
	Status      entity.OrderStatus
	Priority    int
}

// Service enforces the maintenance order lifecycle rules.
type Service struct {
	store     Store
	assets    directory.AssetClient
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     Store
	Assets    directory.AssetClient
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:    p.Store,
		assets:   p.Assets,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,

		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Create verifies the referenced asset exists and that the asset has no
// open order, then persists a new order placed by the given user.
func (s *Service) Create(ctx context.Context, in Input, placedBy string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.String("order.asset_id", in.AssetID)))
	defer span.End()

	assetID, err := uuid.Parse(in.AssetID)
	if err != nil {
		return nil, errorbank.BadRequest("asset id must be a valid uuid", errorbank.WithCause(err))
	}

	if _, err := s.assets.GetAssetByID(ctx, assetID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, errorbank.NotFound(fmt.Sprintf("asset %s not found", in.AssetID))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "asset directory error")
		return nil, errorbank.Internal("failed to verify asset", errorbank.WithCause(err))
	}

	open, err := s.store.HasOpenOrder(ctx, in.AssetID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to check open orders", errorbank.WithCause(err))
	}
	if open {
		return nil, errorbank.Conflict(
			fmt.Sprintf("an open order already exists for asset %s", in.AssetID),
			errorbank.WithDetail("asset_id", in.AssetID),
		)
	}

	now := time.Now().UTC()
	newOrder := &entity.Order{
		AssetID:     in.AssetID,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		PlacedBy:    placedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, newOrder); err != nil {
		// The partial unique index closes the window between the open-order
		// check and the insert.
		if errors.Is(err, repo.ErrOpenOrderExists) {
			return nil, errorbank.Conflict(
				fmt.Sprintf("an open order already exists for asset %s", in.AssetID),
				errorbank.WithDetail("asset_id", in.AssetID),
			)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, newOrder); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", newOrder.ID), zap.Error(err))
	}

	s.publishOrderCreated(ctx, newOrder)
	return newOrder, nil
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if cached, err := s.getFromCache(ctx, id); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	found, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound(fmt.Sprintf("order with id %d not found", id))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, found); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
	}

	return found, nil
}

// List returns all orders, optionally filtered by asset. No pagination.
func (s *Service) List(ctx context.Context, assetID string) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	orders, err := s.store.List(ctx, assetID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Update overwrites description, status, and priority of an existing order.
// Asset id and placed-by are immutable after creation; whatever the request
// carries for them is ignored.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound(fmt.Sprintf("order with id %d not found", id))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	existing.Description = in.Description
	existing.Status = in.Status
	existing.Priority = in.Priority
	existing.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, existing); err != nil {
		// Reopening an order conflicts when the asset already has another
		// open one; the partial unique index catches that on update too.
		if errors.Is(err, repo.ErrOpenOrderExists) {
			return nil, errorbank.Conflict(
				fmt.Sprintf("an open order already exists for asset %s", existing.AssetID),
				errorbank.WithDetail("asset_id", existing.AssetID),
			)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, existing); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
	}

	return existing, nil
}

// Delete hard-deletes an order by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	exists, err := s.store.ExistsByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to check order", errorbank.WithCause(err))
	}
	if !exists {
		return errorbank.NotFound(fmt.Sprintf("order with id %d not found", id))
	}

	if err := s.store.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete order", errorbank.WithCause(err))
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
			s.logger.Warn("orders cache delete failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	return nil
}

func (s *Service) publishOrderCreated(ctx context.Context, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderCreatedEvent{
		ID:        order.ID,
		AssetID:   order.AssetID,
		Status:    order.Status,
		Priority:  order.Priority,
		PlacedBy:  order.PlacedBy,
		CreatedAt: order.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order created", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		s.logger.Error("publish order created", zap.Error(err))
	}
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var cached entity.Order
	if err := json.Unmarshal(bytes, &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

// OrderCreatedEvent is emitted when a new maintenance order is persisted.
type OrderCreatedEvent struct {
	ID        int64              `json:"id"`
	AssetID   string             `json:"asset_id"`
	Status    entity.OrderStatus `json:"status"`
	Priority  int                `json:"priority"`
	PlacedBy  string             `json:"placed_by"`
	CreatedAt time.Time          `json:"created_at"`
}
