package resolver

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/maintenance/internal/directory"
	"github.com/Additional-Code/maintenance/internal/dto"
	"github.com/Additional-Code/maintenance/internal/entity"
)

var resolverTracer = otel.Tracer("github.com/Additional-Code/maintenance/resolver")

// Resolver assembles externally visible representations of orders and notes
// by replacing bare asset/user identifiers with full directory objects.
// Directory failures degrade to placeholder objects; they never fail the
// overall request.
type Resolver struct {
	assets directory.AssetClient
	users  directory.UserClient
	logger *zap.Logger
}

// Params defines dependencies for constructing Resolver.
type Params struct {
	fx.In

	Assets directory.AssetClient
	Users  directory.UserClient
	Logger *zap.Logger
}

// Module provides the resolver to Fx.
var Module = fx.Provide(NewResolver)

// NewResolver wires a Resolver instance.
func NewResolver(p Params) *Resolver {
	return &Resolver{assets: p.Assets, users: p.Users, logger: p.Logger}
}

// Order enriches a single order.
func (r *Resolver) Order(ctx context.Context, order *entity.Order) dto.OrderResponse {
	ctx, span := resolverTracer.Start(ctx, "Resolver.Order", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	asset := r.lookupAsset(ctx, order.AssetID)
	users := r.usersMap(ctx, collectOrderUserIDs([]entity.Order{*order}))
	return assemble(order, asset, users)
}

// Orders enriches a list of orders with one batched user lookup and one
// asset lookup per distinct asset across the whole list.
func (r *Resolver) Orders(ctx context.Context, orders []entity.Order) []dto.OrderResponse {
	if len(orders) == 0 {
		return []dto.OrderResponse{}
	}

	ctx, span := resolverTracer.Start(ctx, "Resolver.Orders", trace.WithAttributes(attribute.Int("order.count", len(orders))))
	defer span.End()

	assets := make(map[string]*directory.Asset)
	for _, order := range orders {
		if _, ok := assets[order.AssetID]; !ok {
			assets[order.AssetID] = r.lookupAsset(ctx, order.AssetID)
		}
	}

	users := r.usersMap(ctx, collectOrderUserIDs(orders))

	responses := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		order := &orders[i]
		responses = append(responses, assemble(order, assets[order.AssetID], users))
	}
	return responses
}

// Note enriches a single note with its author.
func (r *Resolver) Note(ctx context.Context, note *entity.Note) dto.NoteResponse {
	ctx, span := resolverTracer.Start(ctx, "Resolver.Note", trace.WithAttributes(attribute.Int64("note.id", note.ID)))
	defer span.End()

	users := r.usersMap(ctx, collectNoteUserIDs([]entity.Note{*note}))
	return assembleNote(note, users)
}

// Notes enriches a list of notes, batching the author lookup.
func (r *Resolver) Notes(ctx context.Context, notes []entity.Note) []dto.NoteResponse {
	if len(notes) == 0 {
		return []dto.NoteResponse{}
	}

	ctx, span := resolverTracer.Start(ctx, "Resolver.Notes", trace.WithAttributes(attribute.Int("note.count", len(notes))))
	defer span.End()

	users := r.usersMap(ctx, collectNoteUserIDs(notes))

	responses := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		responses = append(responses, assembleNote(&notes[i], users))
	}
	return responses
}

// lookupAsset fetches one asset, degrading to a placeholder on any failure.
// The placeholder always carries the stored identifier, even when it is not
// a parseable uuid.
func (r *Resolver) lookupAsset(ctx context.Context, assetID string) *directory.Asset {
	id, err := uuid.Parse(assetID)
	if err != nil {
		r.logger.Error("stored asset id is not a valid uuid", zap.String("asset_id", assetID), zap.Error(err))
		return placeholderAsset(assetID)
	}

	asset, err := r.assets.GetAssetByID(ctx, id)
	if err != nil {
		r.logger.Error("asset lookup failed; using placeholder", zap.String("asset_id", assetID), zap.Error(err))
		return placeholderAsset(assetID)
	}
	return asset
}

// usersMap resolves a set of user ids via the batch endpoint. Ids the
// directory does not return, or the whole set when the call fails, map to
// placeholder users.
func (r *Resolver) usersMap(ctx context.Context, ids []string) map[string]*directory.User {
	if len(ids) == 0 {
		return map[string]*directory.User{}
	}

	users := make(map[string]*directory.User, len(ids))
	fetched, err := r.users.GetUsersByIDs(ctx, ids, true)
	if err != nil {
		r.logger.Error("user lookup failed; using placeholders", zap.Strings("user_ids", ids), zap.Error(err))
		for _, id := range ids {
			users[id] = placeholderUser(id)
		}
		return users
	}

	for i := range fetched {
		users[fetched[i].ID] = &fetched[i]
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			users[id] = placeholderUser(id)
		}
	}
	return users
}

func collectOrderUserIDs(orders []entity.Order) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, order := range orders {
		add(order.PlacedBy)
		add(order.CompletedBy)
	}
	return ids
}

func collectNoteUserIDs(notes []entity.Note) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, note := range notes {
		if note.CreatedBy == "" {
			continue
		}
		if _, ok := seen[note.CreatedBy]; ok {
			continue
		}
		seen[note.CreatedBy] = struct{}{}
		ids = append(ids, note.CreatedBy)
	}
	return ids
}

func assemble(order *entity.Order, asset *directory.Asset, users map[string]*directory.User) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:          order.ID,
		Asset:       asset,
		Description: order.Description,
		Status:      order.Status,
		Priority:    order.Priority,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if order.PlacedBy != "" {
		resp.PlacedBy = users[order.PlacedBy]
	}
	if order.CompletedBy != "" {
		resp.CompletedBy = users[order.CompletedBy]
	}
	return resp
}

func assembleNote(note *entity.Note, users map[string]*directory.User) dto.NoteResponse {
	resp := dto.NoteResponse{
		ID:        note.ID,
		OrderID:   note.OrderID,
		Note:      note.Note,
		CreatedAt: note.CreatedAt,
	}
	if note.CreatedBy != "" {
		resp.CreatedBy = users[note.CreatedBy]
	}
	return resp
}

// placeholderAsset keeps only the identifier of an unreachable asset.
func placeholderAsset(id string) *directory.Asset {
	return &directory.Asset{ID: id}
}

// placeholderUser keeps the identifier and marks the account unknown.
func placeholderUser(id string) *directory.User {
	return &directory.User{ID: id, Inactive: true, Roles: []string{}}
}
