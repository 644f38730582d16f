package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Logger defines the interface for logging operations within the Kafka
// client. This interface allows for dependency injection of any compatible
// logger implementation.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=kafka
type Logger interface {
	// Info logs an informational message with optional error and fields
	Info(msg string, err error, fields ...map[string]interface{})
	// Debug logs a debug message with optional error and fields
	Debug(msg string, err error, fields ...map[string]interface{})
	// Warn logs a warning message with optional error and fields
	Warn(msg string, err error, fields ...map[string]interface{})
	// Error logs an error message with optional error and fields
	Error(msg string, err error, fields ...map[string]interface{})
	// Fatal logs a fatal message with optional error and fields
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// KafkaClient wraps a kafka-go writer or reader together with the
// serializer and deserializer records pass through. Connections are dialed
// lazily on first use, so NewClient succeeds without a reachable broker.
type KafkaClient struct {
	cfg Config

	observer *Observer

	writer *kafka.Writer
	reader *kafka.Reader

	serializer   Serializer
	deserializer Deserializer

	// mu guards writer, reader and the serde pair.
	mu sync.RWMutex

	shutdownSignal    chan struct{}
	closeShutdownOnce sync.Once
}

// NewClient creates a Kafka client for the given configuration. A consumer
// client owns a reader, a producer client owns a writer. Zero-valued tuning
// fields fall back to the package defaults.
func NewClient(cfg Config) (*KafkaClient, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: topic is required")
	}

	// Apply defaults for zero values
	if cfg.MinBytes == 0 {
		cfg.MinBytes = DefaultMinBytes
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.CommitInterval == 0 {
		cfg.CommitInterval = DefaultCommitInterval
	}
	if cfg.StartOffset == 0 {
		cfg.StartOffset = DefaultStartOffset
	}
	if cfg.Partition == 0 {
		cfg.Partition = DefaultPartition
	}
	if cfg.RequiredAcks == 0 {
		cfg.RequiredAcks = DefaultRequiredAcks
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	client := &KafkaClient{
		cfg:            cfg,
		shutdownSignal: make(chan struct{}),
	}

	var tlsConfig *tls.Config
	if cfg.TLS.Enabled {
		var err error
		tlsConfig, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("kafka: create TLS config: %w", err)
		}
	}

	var mechanism sasl.Mechanism
	if cfg.SASL.Enabled {
		var err error
		mechanism, err = createSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("kafka: create SASL mechanism: %w", err)
		}
	}

	if cfg.IsConsumer {
		client.reader = createReader(cfg, tlsConfig, mechanism)
		client.logInfo("Kafka consumer initialized", map[string]interface{}{
			"topic":    cfg.Topic,
			"group_id": cfg.GroupID,
		})
	} else {
		client.writer = createWriter(cfg, tlsConfig, mechanism)
		client.logInfo("Kafka producer initialized", map[string]interface{}{
			"topic": cfg.Topic,
		})
	}

	return client, nil
}

// WithObserver attaches a metrics observer. Returns the client for
// chaining.
func (k *KafkaClient) WithObserver(observer *Observer) *KafkaClient {
	k.observer = observer
	return k
}

// SetSerializer sets the serializer Publish runs values through.
func (k *KafkaClient) SetSerializer(serializer Serializer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.serializer = serializer
}

// SetDeserializer sets the deserializer Message.Decode uses.
func (k *KafkaClient) SetDeserializer(deserializer Deserializer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.deserializer = deserializer
}

func (k *KafkaClient) logInfo(msg string, fields map[string]interface{}) {
	if k.cfg.Logger != nil {
		k.cfg.Logger.Info(msg, nil, fields)
	}
}

func (k *KafkaClient) logDebug(msg string, fields map[string]interface{}) {
	if k.cfg.Logger != nil {
		k.cfg.Logger.Debug(msg, nil, fields)
	}
}

func (k *KafkaClient) logError(msg string, err error, fields map[string]interface{}) {
	if k.cfg.Logger != nil {
		k.cfg.Logger.Error(msg, err, fields)
	}
}

// createErrorLogger creates a Kafka error logger from the config
func createErrorLogger(cfg Config) kafka.LoggerFunc {
	// Priority 1: Use the structured logger if provided
	if cfg.Logger != nil {
		return kafka.LoggerFunc(func(msg string, args ...interface{}) {
			formattedMsg := msg
			if len(args) > 0 {
				formattedMsg = fmt.Sprintf(msg, args...)
			}
			cfg.Logger.Error("Kafka internal error", nil, map[string]interface{}{
				"error": formattedMsg,
			})
		})
	}

	// Priority 2: Use custom error logger function
	if cfg.ErrorLogger != nil {
		return kafka.LoggerFunc(cfg.ErrorLogger)
	}

	// Priority 3: Use standard log package
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		log.Printf("KAFKA ERROR: "+msg, args...)
	})
}

// createWriter creates a Kafka writer with the given configuration
func createWriter(cfg Config, tlsConfig *tls.Config, mechanism sasl.Mechanism) *kafka.Writer {
	writerConfig := kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLogger:  createErrorLogger(cfg),
	}

	// Set required acks
	writerConfig.RequiredAcks = cfg.RequiredAcks

	// Set async mode
	if cfg.Async {
		writerConfig.Async = true
		writerConfig.BatchSize = cfg.BatchSize
		writerConfig.BatchTimeout = cfg.BatchTimeout
	}

	// Set compression
	switch cfg.CompressionCodec {
	case "gzip":
		writerConfig.CompressionCodec = &compress.GzipCodec
	case "snappy":
		writerConfig.CompressionCodec = &compress.SnappyCodec
	case "lz4":
		writerConfig.CompressionCodec = &compress.Lz4Codec
	case "zstd":
		writerConfig.CompressionCodec = &compress.ZstdCodec
	}

	// Create dialer with TLS and SASL
	dialer := &kafka.Dialer{
		TLS:           tlsConfig,
		SASLMechanism: mechanism,
	}
	writerConfig.Dialer = dialer

	return kafka.NewWriter(writerConfig)
}

// createReader creates a Kafka reader with the given configuration
func createReader(cfg Config, tlsConfig *tls.Config, mechanism sasl.Mechanism) *kafka.Reader {
	readerConfig := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: cfg.StartOffset,
		ErrorLogger: createErrorLogger(cfg),
	}

	// Commit offsets in the background only when auto commit is on,
	// otherwise commits happen explicitly through CommitMsg.
	if cfg.EnableAutoCommit {
		readerConfig.CommitInterval = cfg.CommitInterval
	}

	// A reader rejects a consumer group combined with a fixed partition.
	if cfg.GroupID == "" && cfg.Partition >= 0 {
		readerConfig.Partition = cfg.Partition
	}

	// Create dialer with TLS and SASL
	dialer := &kafka.Dialer{
		TLS:           tlsConfig,
		SASLMechanism: mechanism,
	}
	readerConfig.Dialer = dialer

	return kafka.NewReader(readerConfig)
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	// Load CA certificate
	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	// Load client certificate
	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// createSASLMechanism creates a SASL mechanism from the provided config
func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.Mechanism)
	}
}
