package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/serde/pkg/logger"
)

// FXModule defines the Fx module for the metrics package. It provides the
// *Metrics instance, exposes its registerer to other modules, and manages
// the lifecycle of the Prometheus HTTP server.
//
// Usage:
//
//	app := fx.New(
//	    metrics.FXModule,
//	    fx.Provide(func() metrics.Config {
//	        return metrics.Config{
//	            Address:                 ":9090",
//	            EnableDefaultCollectors: true,
//	            ServiceName:             "order-consumer",
//	        }
//	    }),
//	    // other modules...
//	)
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		ProvideRegisterer,
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// ProvideRegisterer exposes the decorated registerer to the container.
// Instrumented components such as the schema registry client pick it up as
// an optional dependency and attach their collectors to it.
func ProvideRegisterer(m *Metrics) prometheus.Registerer {
	return m.Registerer()
}

// RegisterMetricsLifecycle manages the startup and shutdown lifecycle of the
// Prometheus metrics HTTP server. The server runs in a background goroutine
// for the lifetime of the application and is shut down gracefully on stop.
func RegisterMetricsLifecycle(lc fx.Lifecycle, m *Metrics, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("Starting Prometheus metrics server", nil, map[string]interface{}{
					"address": m.Server.Addr,
				})

				if err := m.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("Error starting Prometheus metrics server", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Prometheus metrics server", nil, nil)
			return m.Server.Shutdown(ctx)
		},
	})
}
