package order

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/maintenance/internal/entity"
	"github.com/Additional-Code/maintenance/internal/presentation/http/response"
	"github.com/Additional-Code/maintenance/internal/resolver"
	service "github.com/Additional-Code/maintenance/internal/service/order"
	"github.com/Additional-Code/maintenance/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/maintenance/transport/http/order")

// HeaderUserID carries the caller identity set by the gateway.
const HeaderUserID = "X-User-Id"

// Handler exposes maintenance order endpoints over HTTP.
type Handler struct {
	svc      *service.Service
	resolver *resolver.Resolver
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service, res *resolver.Resolver) *Handler {
	return &Handler{svc: svc, resolver: res}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

type orderPayload struct {
	AssetID     string `json:"asset_id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    int    `json:"priority"`
}

func (p orderPayload) validate(requireAsset bool) error {
	if requireAsset {
		if strings.TrimSpace(p.AssetID) == "" {
			return errorbank.BadRequest("asset_id is required")
		}
		if len(p.AssetID) > 255 {
			return errorbank.BadRequest("asset_id must be at most 255 characters")
		}
	}
	if strings.TrimSpace(p.Description) == "" {
		return errorbank.BadRequest("description is required")
	}
	if !entity.OrderStatus(p.Status).Valid() {
		return errorbank.BadRequest("status must be one of PENDING, IN_PROGRESS, COMPLETED")
	}
	if p.Priority < 1 || p.Priority > 5 {
		return errorbank.BadRequest("priority must be between 1 and 5")
	}
	return nil
}

func (p orderPayload) input() service.Input {
	return service.Input{
		AssetID:     p.AssetID,
		Description: p.Description,
		Status:      entity.OrderStatus(p.Status),
		Priority:    p.Priority,
	}
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := payload.validate(true); err != nil {
		return b.WithError(err).Build()
	}

	placedBy := c.Request().Header.Get(HeaderUserID)
	if placedBy == "" {
		return b.WithError(errorbank.BadRequest("X-User-Id header is required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create", trace.WithAttributes(
		attribute.String("order.asset_id", payload.AssetID),
	))
	defer span.End()

	created, err := h.svc.Create(ctx, payload.input(), placedBy)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(h.resolver.Order(ctx, created)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx, c.QueryParam("asset_id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(h.resolver.Orders(ctx, orders)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	found, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(h.resolver.Order(ctx, found)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	// asset_id is immutable after creation; the payload value is ignored.
	if err := payload.validate(false); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	updated, err := h.svc.Update(ctx, id, payload.input())
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(h.resolver.Order(ctx, updated)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}

	return c.NoContent(http.StatusNoContent)
}
