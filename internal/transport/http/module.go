package http

import (
	"go.uber.org/fx"

	notetransport "github.com/Additional-Code/maintenance/internal/transport/http/note"
	ordertransport "github.com/Additional-Code/maintenance/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	notetransport.Module,
)
