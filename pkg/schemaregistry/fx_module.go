package schemaregistry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// FXModule is an fx.Module that provides and configures the schema registry
// client. A Config must be provided by the application; a Logger and a
// prometheus.Registerer are picked up when present and skipped otherwise.
//
// Usage:
//
//	app := fx.New(
//	    schemaregistry.FXModule,
//	    fx.Provide(
//	        func() schemaregistry.Config {
//	            return schemaregistry.Config{
//	                URL: "http://localhost:8081",
//	            }
//	        },
//	    ),
//	)
var FXModule = fx.Module("schemaregistry",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterSchemaRegistryLifecycle),
)

// SchemaRegistryParams groups the dependencies needed to create a client.
type SchemaRegistryParams struct {
	fx.In

	Config     Config
	Logger     Logger                `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// NewClientWithDI creates a schema registry client from injected
// dependencies. The logger and the metrics observer are attached only when
// the container provides them.
func NewClientWithDI(params SchemaRegistryParams) (*Client, error) {
	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}

	if params.Logger != nil {
		client = client.WithLogger(params.Logger)
	}
	if params.Registerer != nil {
		client = client.WithObserver(NewObserver(params.Registerer))
	}
	return client, nil
}

// SchemaRegistryLifecycleParams groups the dependencies for lifecycle
// registration.
type SchemaRegistryLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *Client
	Logger    Logger `optional:"true"`
}

// RegisterSchemaRegistryLifecycle hooks the client into the fx lifecycle.
// The HTTP transport is stateless, so there is nothing to tear down on
// stop; the hooks only report startup and shutdown.
func RegisterSchemaRegistryLifecycle(params SchemaRegistryLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if params.Logger != nil {
				params.Logger.Info("Schema registry client initialized", nil)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if params.Logger != nil {
				params.Logger.Info("Schema registry client shutting down", nil)
			}
			return nil
		},
	})
}
