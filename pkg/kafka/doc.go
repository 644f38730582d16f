// Package kafka provides functionality for interacting with Apache Kafka.
//
// The kafka package offers a simplified interface for working with Kafka
// message brokers, providing connection management, message publishing, and
// consuming capabilities with a focus on schema-aware payloads: a client
// carries a serializer and deserializer pair, so records are written and
// read in the schema registry wire format without callers touching the
// envelope.
//
// Core Features:
//   - Producer and consumer clients over segmentio/kafka-go
//   - Schema registry serializer and deserializer integration
//   - Consumer group support with explicit or automatic offset commits
//   - Parallel consumption for high-volume topics
//   - TLS and SASL (PLAIN, SCRAM-SHA-256, SCRAM-SHA-512) broker connections
//   - Integration with the logger package for structured logging
//   - Prometheus metrics via an optional observer
//
// Basic Usage:
//
//	import (
//		"github.com/Aleph-Alpha/serde/pkg/kafka"
//		"github.com/Aleph-Alpha/serde/pkg/schemaregistry"
//		"context"
//		"sync"
//	)
//
//	// Create a producer client
//	client, err := kafka.NewClient(kafka.Config{
//		Brokers: []string{"localhost:9092"},
//		Topic:   "orders",
//	})
//	if err != nil {
//		log.Fatal("Failed to create Kafka client", err, nil)
//	}
//	defer client.GracefulShutdown()
//
//	// Attach a schema registry serializer so Publish writes the wire format
//	serializer, err := registry.GetSerializer(ctx, schemaregistry.TopicNameStrategy{Topic: "orders"})
//	if err != nil {
//		log.Fatal("Failed to resolve schema", err, nil)
//	}
//	client.SetSerializer(serializer)
//
//	// Publish a value; the serializer validates it against the schema
//	err = client.Publish(ctx, "order-123", order, nil)
//	if err != nil {
//		log.Error("Failed to publish message", err, nil)
//	}
//
// Consuming:
//
//	consumer, err := kafka.NewClient(kafka.Config{
//		Brokers:    []string{"localhost:9092"},
//		Topic:      "orders",
//		GroupID:    "order-processor",
//		IsConsumer: true,
//	})
//	consumer.SetDeserializer(deserializer)
//
//	wg := &sync.WaitGroup{}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	msgChan := consumer.Consume(ctx, wg)
//	for msg := range msgChan {
//		var order Order
//		if err := msg.Decode(ctx, &order); err != nil {
//			log.Error("Failed to decode message", err, nil)
//			continue
//		}
//
//		// Process the order
//
//		// Commit the message
//		if err := msg.CommitMsg(); err != nil {
//			log.Error("Failed to commit message", err, nil)
//		}
//	}
//
// High-Throughput Consumption with Parallel Workers:
//
// For high-volume topics, use ConsumeParallel to fetch with several workers
// feeding one channel:
//
//	msgChan := consumer.ConsumeParallel(ctx, wg, 5)
//	for msg := range msgChan {
//		processMessage(msg)
//
//		if err := msg.CommitMsg(); err != nil {
//			log.Error("Failed to commit message", err, nil)
//		}
//	}
//
// Message Headers:
//
// Publish attaches the given headers to the record unchanged and Header
// returns them on the consuming side, so trace context and other metadata
// travel with the message:
//
//	err = client.Publish(ctx, "key", order, map[string]string{
//		"traceparent": traceparent,
//	})
//
//	for msg := range msgChan {
//		headers := msg.Header()
//		// restore trace context from headers["traceparent"]
//	}
//
// FX Module Integration:
//
// This package provides a fx module for easy integration:
//
//	app := fx.New(
//		logger.FXModule, // Optional: provides the structured logger
//		kafka.FXModule,
//		// ... other modules
//	)
//	app.Run()
//
// The Kafka module picks up a logger, a serializer and deserializer pair,
// and a prometheus.Registerer when the container provides them.
//
// Configuration:
//
// The kafka client can be configured via environment variables or explicitly:
//
//	KAFKA_BROKERS=localhost:9092,localhost:9093
//	KAFKA_TOPIC=orders
//	KAFKA_GROUP_ID=order-processor
//
// Thread Safety:
//
// All methods on KafkaClient are safe for concurrent use by multiple
// goroutines. GracefulShutdown may be called more than once; later calls
// are no-ops.
package kafka
