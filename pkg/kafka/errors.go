package kafka

import "errors"

// Sentinel errors returned by the Kafka client. Match them with errors.Is.
var (
	// ErrNoSerializer is returned by Publish when a value that is neither
	// []byte nor string is published without a configured serializer.
	ErrNoSerializer = errors.New("kafka: no serializer configured")

	// ErrNoDeserializer is returned by Message.Decode when the client has
	// no deserializer configured.
	ErrNoDeserializer = errors.New("kafka: no deserializer configured")

	// ErrNotProducer is returned by Publish on a consumer client.
	ErrNotProducer = errors.New("kafka: client is not configured as a producer")

	// ErrNotConsumer is reported by Consume on a producer client.
	ErrNotConsumer = errors.New("kafka: client is not configured as a consumer")

	// ErrClientClosed is returned once GracefulShutdown has run.
	ErrClientClosed = errors.New("kafka: client is closed")
)
