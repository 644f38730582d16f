package kafka

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// FXModule is an fx.Module that provides and configures the Kafka client.
// A Config must be provided by the application; a Logger, a serializer and
// deserializer pair, and a prometheus.Registerer are picked up when present
// and skipped otherwise.
//
// Usage:
//
//	app := fx.New(
//	    kafka.FXModule,
//	    fx.Provide(
//	        func() kafka.Config {
//	            return kafka.Config{
//	                Brokers: []string{"localhost:9092"},
//	                Topic:   "orders",
//	            }
//	        },
//	    ),
//	)
var FXModule = fx.Module("kafka",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterKafkaLifecycle),
)

// KafkaParams groups the dependencies needed to create a client.
type KafkaParams struct {
	fx.In

	Config       Config
	Logger       Logger                `optional:"true"`
	Serializer   Serializer            `optional:"true"`
	Deserializer Deserializer          `optional:"true"`
	Registerer   prometheus.Registerer `optional:"true"`
}

// NewClientWithDI creates a Kafka client from injected dependencies. The
// injected logger is used unless the config already carries one, and the
// metrics observer is attached only when the container provides a
// registerer.
func NewClientWithDI(params KafkaParams) (*KafkaClient, error) {
	cfg := params.Config
	if cfg.Logger == nil {
		cfg.Logger = params.Logger
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if params.Serializer != nil {
		client.SetSerializer(params.Serializer)
	}
	if params.Deserializer != nil {
		client.SetDeserializer(params.Deserializer)
	}
	if params.Registerer != nil {
		client = client.WithObserver(NewObserver(params.Registerer))
	}
	return client, nil
}

// KafkaLifecycleParams groups the dependencies for lifecycle registration.
type KafkaLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *KafkaClient
}

// RegisterKafkaLifecycle hooks the client into the fx lifecycle. The
// writer and reader dial lazily, so there is nothing to start; shutdown
// closes them and stops any running fetch loops.
func RegisterKafkaLifecycle(params KafkaLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return params.Client.GracefulShutdown()
		},
	})
}
