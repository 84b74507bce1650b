package note

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/maintenance/internal/presentation/http/response"
	"github.com/Additional-Code/maintenance/internal/resolver"
	service "github.com/Additional-Code/maintenance/internal/service/note"
	ordertransport "github.com/Additional-Code/maintenance/internal/transport/http/order"
	"github.com/Additional-Code/maintenance/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/maintenance/transport/http/note")

// Handler exposes order note endpoints over HTTP.
type Handler struct {
	svc      *service.Service
	resolver *resolver.Resolver
}

// NewHandler constructs a note Handler.
func NewHandler(svc *service.Service, res *resolver.Resolver) *Handler {
	return &Handler{svc: svc, resolver: res}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders/:orderId/notes")
	g.POST("", h.add)
	g.GET("", h.list)
	g.DELETE("/:noteId", h.delete)
}

type notePayload struct {
	Note string `json:"note"`
}

func (h *Handler) add(c echo.Context) error {
	b := response.New(c)

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid order id", errorbank.WithCause(err))).Build()
	}

	var payload notePayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if strings.TrimSpace(payload.Note) == "" {
		return b.WithError(errorbank.BadRequest("note cannot be blank")).Build()
	}

	createdBy := c.Request().Header.Get(ordertransport.HeaderUserID)
	if createdBy == "" {
		return b.WithError(errorbank.BadRequest("X-User-Id header is required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "notes.add", trace.WithAttributes(attribute.Int64("note.order_id", orderID)))
	defer span.End()

	created, err := h.svc.Add(ctx, orderID, payload.Note, createdBy)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(h.resolver.Note(ctx, created)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid order id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "notes.list", trace.WithAttributes(attribute.Int64("note.order_id", orderID)))
	defer span.End()

	notes, err := h.svc.List(ctx, orderID)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(h.resolver.Notes(ctx, notes)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid order id", errorbank.WithCause(err))).Build()
	}
	noteID, err := strconv.ParseInt(c.Param("noteId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid note id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "notes.delete", trace.WithAttributes(
		attribute.Int64("note.order_id", orderID),
		attribute.Int64("note.id", noteID),
	))
	defer span.End()

	if err := h.svc.Delete(ctx, orderID, noteID); err != nil {
		return b.WithError(err).Build()
	}

	return c.NoContent(http.StatusNoContent)
}
