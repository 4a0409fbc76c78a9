package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/iota-uz/tenantgate/internal/server"
	"github.com/iota-uz/tenantgate/modules"
	"github.com/iota-uz/tenantgate/modules/core"
	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/pkg/application"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/configuration"
	"github.com/iota-uz/tenantgate/pkg/database"
	"github.com/iota-uz/tenantgate/pkg/eventbus"
	"github.com/iota-uz/tenantgate/pkg/identity/remote"
	"github.com/iota-uz/tenantgate/pkg/logging"
	"github.com/iota-uz/tenantgate/pkg/metrics"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := database.NewPool(ctx, conf.Database)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	idp, err := remote.FromConfig(conf.Identity)
	if err != nil {
		log.Fatalf("failed to create identity client: %v", err)
	}

	catalog := tenant.DefaultCatalog()
	if conf.Tenancy.PlanCatalogPath != "" {
		catalog, err = tenant.LoadCatalog(conf.Tenancy.PlanCatalogPath)
		if err != nil {
			log.Fatalf("failed to load plan catalog: %v", err)
		}
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     composables.NewPool(pool),
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	builtIn := modules.BuiltInModules(&core.ModuleOptions{
		Identity: idp,
		Catalog:  catalog,
		Tenancy:  conf.Tenancy,
	})
	if err := modules.Load(app, builtIn...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if conf.Prometheus.Enabled {
		if err := metrics.RegisterPool(pool); err != nil {
			logger.WithError(err).Warn("failed to register pool metrics")
		}
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(runCtx, conf.SocketAddress, conf.ShutdownTimeout); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
