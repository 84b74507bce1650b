package note

import (
	"go.uber.org/fx"

	repo "github.com/Additional-Code/maintenance/internal/repository/note"
	ordersvc "github.com/Additional-Code/maintenance/internal/service/order"
)

// Module provides the note service to Fx, binding the note repository and
// the order service to the local contracts.
var Module = fx.Options(
	fx.Provide(func(r *repo.Repository) Store { return r }),
	fx.Provide(func(s *ordersvc.Service) Orders { return s }),
	fx.Provide(NewService),
)
