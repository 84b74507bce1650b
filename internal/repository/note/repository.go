package note

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/maintenance/internal/database"
	"github.com/Additional-Code/maintenance/internal/entity"
	"github.com/uptrace/bun"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/maintenance/repository/note")

// ErrNotFound is returned when a note is missing from its order.
var ErrNotFound = errors.New("note not found")

// Repository encapsulates read/write access for order notes.
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

// Create persists a new note.
func (r *Repository) Create(ctx context.Context, note *entity.Note) error {
	if note == nil {
		return errors.New("nil note")
	}
	ctx, span := repoTracer.Start(ctx, "NoteRepository.Create", trace.WithAttributes(attribute.Int64("note.order_id", note.OrderID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(note).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// ListByOrder returns the notes of one order, latest first.
func (r *Repository) ListByOrder(ctx context.Context, orderID int64) ([]entity.Note, error) {
	ctx, span := repoTracer.Start(ctx, "NoteRepository.ListByOrder", trace.WithAttributes(attribute.Int64("note.order_id", orderID)))
	defer span.End()

	var notes []entity.Note
	err := r.reader.NewSelect().
		Model(&notes).
		Where("order_id = ?", orderID).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return notes, nil
}

// ExistsInOrder reports whether a note with the given id belongs to the order.
func (r *Repository) ExistsInOrder(ctx context.Context, noteID, orderID int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "NoteRepository.ExistsInOrder", trace.WithAttributes(
		attribute.Int64("note.id", noteID),
		attribute.Int64("note.order_id", orderID),
	))
	defer span.End()

	exists, err := r.reader.NewSelect().
		Model((*entity.Note)(nil)).
		Where("id = ?", noteID).
		Where("order_id = ?", orderID).
		Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exists failed")
		return false, err
	}
	return exists, nil
}

// Delete removes a note by id.
func (r *Repository) Delete(ctx context.Context, noteID int64) error {
	ctx, span := repoTracer.Start(ctx, "NoteRepository.Delete", trace.WithAttributes(attribute.Int64("note.id", noteID)))
	defer span.End()

	_, err := r.writer.NewDelete().Model((*entity.Note)(nil)).Where("id = ?", noteID).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return err
}
