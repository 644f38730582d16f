// Package logger provides structured logging for the serde packages.
//
// The package wraps Uber's Zap logger behind a small interface-friendly
// surface: every method takes a message, an optional error and optional
// field maps. The schema registry and Kafka packages declare their own
// Logger interfaces matching these methods, so this logger plugs into them
// without an adapter.
//
// Core Features:
//   - Structured JSON logging with key-value pairs
//   - Log levels (Debug, Info, Warn, Error, Fatal)
//   - Service and pid tags on every entry
//   - Integration with the fx dependency injection framework
//
// Basic Usage:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:   "info",
//		Service: "order-consumer",
//	})
//
//	log.Info("Registered schema", nil, map[string]interface{}{
//		"subject":   "orders-value",
//		"schema_id": 42,
//	})
//
//	if err != nil {
//		log.Error("Failed to fetch schema", err, map[string]interface{}{
//			"subject": "orders-value",
//		})
//	}
//
// FX Module Integration:
//
// This package provides an fx module for applications using the fx
// dependency injection framework:
//
//	app := fx.New(
//		logger.FXModule,
//		// ... other modules
//	)
//	app.Run()
//
// The module provides *Logger and syncs buffered entries on shutdown.
//
// Configuration:
//
// The logger can be configured via environment variables:
//
//	ZAP_LOGGER_LEVEL=debug       # Log level (debug, info, warning, error)
//	ZAP_LOGGER_SERVICE=my-app    # Service tag, defaults to "serde"
//
// Thread Safety:
//
// All methods on Logger are safe for concurrent use by multiple goroutines.
package logger
