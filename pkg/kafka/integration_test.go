package kafka

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/serde/pkg/schemaregistry"
)

const orderAvroSchema = `{"type":"record","name":"Order","namespace":"shop","fields":[{"name":"a","type":"long"},{"name":"b","type":"string"}]}`

type order struct {
	A int64  `avro:"a" json:"a"`
	B string `avro:"b" json:"b"`
}

// createBrokerContainer sets up and starts a Redpanda Docker container and
// returns the broker address together with the base URL of its built-in
// schema registry.
func createBrokerContainer(ctx context.Context) (testcontainers.Container, string, string, error) {
	// Get random free ports for the broker and the registry
	kafkaPort, err := getFreePort()
	if err != nil {
		return nil, "", "", fmt.Errorf("could not get free port: %w", err)
	}
	registryPort, err := getFreePort()
	if err != nil {
		return nil, "", "", fmt.Errorf("could not get free port: %w", err)
	}

	portBindings := nat.PortMap{
		"9092/tcp": []nat.PortBinding{{HostPort: fmt.Sprintf("%d", kafkaPort)}},
		"8081/tcp": []nat.PortBinding{{HostPort: fmt.Sprintf("%d", registryPort)}},
	}

	req := testcontainers.ContainerRequest{
		Image: "docker.redpanda.com/redpandadata/redpanda:v25.1.1",
		Cmd: []string{
			"redpanda", "start",
			"--mode", "dev-container",
			"--smp", "1",
			"--memory", "1G",
			"--kafka-addr", "PLAINTEXT://0.0.0.0:9092",
			"--advertise-kafka-addr", fmt.Sprintf("PLAINTEXT://localhost:%d", kafkaPort),
			"--schema-registry-addr", "0.0.0.0:8081",
		},
		ExposedPorts: []string{
			"9092/tcp",
			"8081/tcp",
		},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("9092/tcp").WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("8081/tcp").WithStartupTimeout(60*time.Second),
			wait.ForHTTP("/subjects").WithPort("8081/tcp").WithStartupTimeout(60*time.Second),
		),
	}

	containerInstance, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to start Redpanda container: %w", err)
	}

	host, err := containerInstance.Host(ctx)
	if err != nil {
		_ = containerInstance.Terminate(ctx)
		return nil, "", "", fmt.Errorf("failed to get host: %w", err)
	}

	broker := fmt.Sprintf("%s:%d", host, kafkaPort)
	registryURL := fmt.Sprintf("http://%s:%d", host, registryPort)
	return containerInstance, broker, registryURL, nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	addr, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func(addr net.Listener) {
		err := addr.Close()
		if err != nil {
			fmt.Printf("Failed to close listener: %v", err)
		}
	}(addr)

	return addr.Addr().(*net.TCPAddr).Port, nil
}

// TestKafkaSchemaRoundTrip publishes a value through a schema registry
// serializer and reads it back with a consumer group, checking that the
// wire envelope, the key and the headers survive the broker.
func TestKafkaSchemaRoundTrip(t *testing.T) {
	ctx := context.Background()

	containerInstance, broker, registryURL, err := createBrokerContainer(ctx)
	require.NoError(t, err)

	registry, err := schemaregistry.NewClient(schemaregistry.Config{URL: registryURL})
	require.NoError(t, err)

	details := schemaregistry.SchemaDetails{
		Format:   schemaregistry.Avro,
		Strategy: schemaregistry.TopicNameStrategy{Topic: "orders"},
	}
	_, err = registry.RegisterSchema(ctx, details, orderAvroSchema)
	require.NoError(t, err)

	serializer, err := registry.GetSerializer(ctx, details)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	producerLogger := NewMockLogger(ctrl)
	producerLogger.EXPECT().Info("Kafka producer initialized", nil, gomock.Any()).Times(1)
	producerLogger.EXPECT().Debug("Published message", nil, gomock.Any()).Times(1)
	producerLogger.EXPECT().Info("Kafka client shut down", nil, gomock.Any()).Times(1)
	producerLogger.EXPECT().Error("Kafka internal error", gomock.Nil(), gomock.Any()).AnyTimes()

	producer, err := NewClient(Config{
		Brokers: []string{broker},
		Topic:   "orders",
		Logger:  producerLogger,
	})
	require.NoError(t, err)
	producer.SetSerializer(serializer)

	traceparent := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	sent := order{A: 100, B: "test"}
	require.NoError(t, producer.Publish(ctx, "order-1", sent, map[string]string{
		"traceparent": traceparent,
	}))

	consumerLogger := NewMockLogger(ctrl)
	consumerLogger.EXPECT().Info("Kafka consumer initialized", nil, gomock.Any()).Times(1)
	consumerLogger.EXPECT().Info("Kafka client shut down", nil, gomock.Any()).Times(1)
	consumerLogger.EXPECT().Error("Kafka internal error", gomock.Nil(), gomock.Any()).AnyTimes()

	consumer, err := NewClient(Config{
		Brokers:    []string{broker},
		Topic:      "orders",
		GroupID:    "order-processor",
		IsConsumer: true,
		Logger:     consumerLogger,
	})
	require.NoError(t, err)
	consumer.SetDeserializer(registry.GetDeserializer(schemaregistry.Avro))

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg := &sync.WaitGroup{}
	msgChan := consumer.Consume(consumeCtx, wg)

	var msg *Message
	select {
	case msg = <-msgChan:
	case <-time.After(90 * time.Second):
		t.Fatal("timed out waiting for the message")
	}
	require.NotNil(t, msg)

	require.Equal(t, "order-1", msg.Key())
	require.Equal(t, "orders", msg.Topic())
	require.Equal(t, traceparent, msg.Header()["traceparent"])

	// The record body is the wire envelope, not a bare Avro payload.
	require.Equal(t, byte(0), msg.Body()[0])

	var got order
	require.NoError(t, msg.Decode(ctx, &got))
	require.Equal(t, sent, got)

	require.NoError(t, msg.CommitMsg())

	cancel()
	require.NoError(t, consumer.GracefulShutdown())
	require.NoError(t, producer.GracefulShutdown())
	wg.Wait()

	require.NoError(t, containerInstance.Terminate(ctx))
}
