package server

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/tenantgate/modules/core/presentation/controllers"
	"github.com/iota-uz/tenantgate/pkg/application"
	"github.com/iota-uz/tenantgate/pkg/configuration"
	"github.com/iota-uz/tenantgate/pkg/constants"
	"github.com/iota-uz/tenantgate/pkg/middleware"
	"github.com/iota-uz/tenantgate/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
}

// Default assembles the global middleware stack. Rate limiting runs before
// any tenant route so unauthenticated floods never reach the identity provider.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.LoggerOptions{
			RequestIDHeader: conf.RequestIDHeader,
			RealIPHeader:    conf.RealIPHeader,
		}),

		middleware.TracedMiddleware("database"),
		middleware.Provide(constants.AppKey, app),
		middleware.WithPool(app.DB()),

		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.Tenancy.OrganizationHeader, conf.CORSOrigins...),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		var err error

		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
				RealIPHeader:      conf.RealIPHeader,
			}),
		)
	}

	if conf.GoAppEnvironment == configuration.Production && conf.OpsGuard.Enabled {
		middlewares = append(middlewares,
			middleware.TracedMiddleware("opsGuard"),
			middleware.OpsGuard(middleware.OpsGuardOptions{
				Paths:        []string{conf.Prometheus.Path},
				CIDRs:        conf.OpsGuard.CIDRs,
				Token:        conf.OpsGuard.Token,
				RealIPHeader: conf.RealIPHeader,
			}),
		)
	}

	middlewares = append(middlewares,
		middleware.TracedMiddleware("requestParams"),
		middleware.RequestParams(),
	)

	app.RegisterMiddleware(middlewares...)

	serverInstance := server.NewHTTPServer(
		app,
		controllers.NotFound(),
		controllers.MethodNotAllowed(),
	)
	serverInstance.ReadTimeout = conf.ReadTimeout
	serverInstance.WriteTimeout = conf.WriteTimeout
	return serverInstance, nil
}
