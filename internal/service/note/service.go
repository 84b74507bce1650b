package note

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/maintenance/internal/entity"
	"github.com/Additional-Code/maintenance/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/maintenance/service/note")

// Store is the persistence contract for order notes, implemented by the
// note repository.
type Store interface {
	Create(ctx context.Context, note *entity.Note) error
	ListByOrder(ctx context.Context, orderID int64) ([]entity.Note, error)
	ExistsInOrder(ctx context.Context, noteID, orderID int64) (bool, error)
	Delete(ctx context.Context, noteID int64) error
}

// Orders resolves parent orders; the order service satisfies it.
type Orders interface {
	Get(ctx context.Context, id int64) (*entity.Order, error)
}

// Service orchestrates note CRUD scoped to a parent order.
type Service struct {
	store  Store
	orders Orders
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store  Store
	Orders Orders
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{store: p.Store, orders: p.Orders, logger: p.Logger}
}

// Add attaches a note to an existing order. A missing parent order
// propagates as not-found.
func (s *Service) Add(ctx context.Context, orderID int64, text, createdBy string) (*entity.Note, error) {
	ctx, span := serviceTracer.Start(ctx, "NoteService.Add", trace.WithAttributes(attribute.Int64("note.order_id", orderID)))
	defer span.End()

	parent, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	newNote := &entity.Note{
		OrderID:   parent.ID,
		Note:      text,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, newNote); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create note", errorbank.WithCause(err))
	}

	s.logger.Info("note added", zap.Int64("order_id", orderID), zap.Int64("note_id", newNote.ID))
	return newNote, nil
}

// List returns the notes of an order, latest first. A missing order is
// not-found rather than an empty list.
func (s *Service) List(ctx context.Context, orderID int64) ([]entity.Note, error) {
	ctx, span := serviceTracer.Start(ctx, "NoteService.List", trace.WithAttributes(attribute.Int64("note.order_id", orderID)))
	defer span.End()

	if _, err := s.orders.Get(ctx, orderID); err != nil {
		return nil, err
	}

	notes, err := s.store.ListByOrder(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list notes", errorbank.WithCause(err))
	}
	return notes, nil
}

// Delete removes a note scoped to its parent order. A note id that exists
// under a different order is treated as missing.
func (s *Service) Delete(ctx context.Context, orderID, noteID int64) error {
	ctx, span := serviceTracer.Start(ctx, "NoteService.Delete", trace.WithAttributes(
		attribute.Int64("note.order_id", orderID),
		attribute.Int64("note.id", noteID),
	))
	defer span.End()

	if _, err := s.orders.Get(ctx, orderID); err != nil {
		return err
	}

	exists, err := s.store.ExistsInOrder(ctx, noteID, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to check note", errorbank.WithCause(err))
	}
	if !exists {
		return errorbank.NotFound(fmt.Sprintf("order with id %d does not have a note with id %d", orderID, noteID))
	}

	if err := s.store.Delete(ctx, noteID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete note", errorbank.WithCause(err))
	}

	s.logger.Info("note deleted", zap.Int64("order_id", orderID), zap.Int64("note_id", noteID))
	return nil
}
