package router

import (
	"time"

	appuser "github.com/oksasatya/user-api/internal/application"
	"github.com/oksasatya/user-api/internal/container"
	"github.com/oksasatya/user-api/internal/infrastructure/geolocation"
	"github.com/oksasatya/user-api/internal/infrastructure/messaging"
	handlers "github.com/oksasatya/user-api/internal/interface/http"
	"github.com/oksasatya/user-api/internal/router/modules"
)

type UserModuleDeps struct {
	Service *appuser.Service
	Handler *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	gate := geolocation.NewGate(geolocation.Options{
		URLTemplate:    cfg.GeoLookupURLTemplate,
		AllowedCountry: cfg.GeoAllowedCountry,
		ConnectTimeout: cfg.GeoConnectTimeout,
		ReadTimeout:    cfg.GeoReadTimeout,
	}, logger)
	publisher := messaging.NewPublisher(container.GetBusChannel(), cfg.EventPublishTimeout, logger)

	service := appuser.NewService(container.GetUserRepository(), gate, publisher, logger)
	handler := handlers.NewUserHandler(service, logger, cfg.LocationDeniedStatus)

	return UserModuleDeps{Service: service, Handler: handler}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	userDeps := buildUserDeps()

	r.Add(modules.NewUserModule(userDeps.Handler, container.GetRedis(), cfg.CreateRateLimit, time.Minute, cfg.Env == "development"))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
	if cfg.DocsEnabled {
		r.Add(modules.NewDocsModule())
	}
}
