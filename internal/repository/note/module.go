package note

import "go.uber.org/fx"

// Module provides the note repository to Fx.
var Module = fx.Provide(NewRepository)
