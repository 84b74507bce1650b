package order

import (
	"go.uber.org/fx"

	repo "github.com/Additional-Code/maintenance/internal/repository/order"
)

// Module provides the order service to Fx, binding the repository to the
// Store contract.
var Module = fx.Options(
	fx.Provide(func(r *repo.Repository) Store { return r }),
	fx.Provide(NewService),
)
