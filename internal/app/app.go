package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/maintenance/internal/cache"
	"github.com/Additional-Code/maintenance/internal/config"
	"github.com/Additional-Code/maintenance/internal/database"
	"github.com/Additional-Code/maintenance/internal/directory"
	"github.com/Additional-Code/maintenance/internal/logger"
	"github.com/Additional-Code/maintenance/internal/messaging"
	"github.com/Additional-Code/maintenance/internal/observability"
	repositorynote "github.com/Additional-Code/maintenance/internal/repository/note"
	repositoryorder "github.com/Additional-Code/maintenance/internal/repository/order"
	"github.com/Additional-Code/maintenance/internal/resolver"
	httpserver "github.com/Additional-Code/maintenance/internal/server/http"
	servicenote "github.com/Additional-Code/maintenance/internal/service/note"
	serviceorder "github.com/Additional-Code/maintenance/internal/service/order"
	transporthttp "github.com/Additional-Code/maintenance/internal/transport/http"
	"github.com/Additional-Code/maintenance/internal/worker"
	workerorder "github.com/Additional-Code/maintenance/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	directory.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositoryorder.Module,
	repositorynote.Module,
	resolver.Module,
	serviceorder.Module,
	servicenote.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
