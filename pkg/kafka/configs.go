package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// Defaults applied by NewClient for every Config field left at its zero
// value.
const (
	// DefaultPartition lets the broker assign partitions.
	DefaultPartition = -1

	// DefaultStartOffset starts new consumer groups at the oldest
	// retained message.
	DefaultStartOffset = kafka.FirstOffset

	// DefaultRequiredAcks waits for all in-sync replicas.
	DefaultRequiredAcks = -1

	DefaultMinBytes       = 1
	DefaultMaxBytes       = 10e6
	DefaultMaxWait        = 10 * time.Second
	DefaultCommitInterval = 1 * time.Second
	DefaultBatchSize      = 100
	DefaultBatchTimeout   = 1 * time.Second
	DefaultMaxAttempts    = 10
	DefaultWriteTimeout   = 10 * time.Second
)

// Config defines the configuration for the Kafka client.
type Config struct {
	// Brokers lists the addresses of the Kafka brokers to connect to.
	Brokers []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`

	// Topic is the topic messages are published to or consumed from.
	Topic string `yaml:"topic" envconfig:"KAFKA_TOPIC"`

	// GroupID enables consumer group coordination when set. Leave it
	// empty to read one partition directly.
	GroupID string `yaml:"group_id" envconfig:"KAFKA_GROUP_ID"`

	// IsConsumer selects between a producer client and a consumer client.
	IsConsumer bool `yaml:"is_consumer" envconfig:"KAFKA_IS_CONSUMER"`

	// Partition to consume from when GroupID is empty. -1 lets the
	// broker assign.
	Partition int `yaml:"partition" envconfig:"KAFKA_PARTITION"`

	// StartOffset determines where a consumer without committed offsets
	// starts reading.
	StartOffset int64 `yaml:"start_offset" envconfig:"KAFKA_START_OFFSET"`

	// MinBytes and MaxBytes bound the batch size fetched per request.
	MinBytes int `yaml:"min_bytes" envconfig:"KAFKA_MIN_BYTES"`
	MaxBytes int `yaml:"max_bytes" envconfig:"KAFKA_MAX_BYTES"`

	// MaxWait caps how long the broker holds a fetch waiting for MinBytes.
	MaxWait time.Duration `yaml:"max_wait" envconfig:"KAFKA_MAX_WAIT"`

	// EnableAutoCommit commits offsets in the background every
	// CommitInterval instead of only on explicit CommitMsg calls.
	EnableAutoCommit bool          `yaml:"enable_auto_commit" envconfig:"KAFKA_ENABLE_AUTO_COMMIT"`
	CommitInterval   time.Duration `yaml:"commit_interval" envconfig:"KAFKA_COMMIT_INTERVAL"`

	// RequiredAcks controls write durability: -1 all replicas, 1 leader
	// only, 0 fire and forget.
	RequiredAcks int `yaml:"required_acks" envconfig:"KAFKA_REQUIRED_ACKS"`

	// Async switches the writer to batched background writes.
	Async        bool          `yaml:"async" envconfig:"KAFKA_ASYNC"`
	BatchSize    int           `yaml:"batch_size" envconfig:"KAFKA_BATCH_SIZE"`
	BatchTimeout time.Duration `yaml:"batch_timeout" envconfig:"KAFKA_BATCH_TIMEOUT"`

	MaxAttempts  int           `yaml:"max_attempts" envconfig:"KAFKA_MAX_ATTEMPTS"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"KAFKA_WRITE_TIMEOUT"`

	// CompressionCodec selects the write compression: "gzip", "snappy",
	// "lz4" or "zstd". Empty means uncompressed.
	CompressionCodec string `yaml:"compression_codec" envconfig:"KAFKA_COMPRESSION_CODEC"`

	// TLS configures transport encryption.
	TLS TLSConfig `yaml:"tls"`

	// SASL configures broker authentication.
	SASL SASLConfig `yaml:"sasl"`

	// Logger receives client and broker errors. Optional.
	Logger Logger `yaml:"-"`

	// ErrorLogger receives broker errors when no Logger is set. Optional.
	ErrorLogger func(msg string, args ...interface{}) `yaml:"-"`
}

// TLSConfig configures transport encryption towards the brokers.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled" envconfig:"KAFKA_TLS_ENABLED"`
	CACertPath         string `yaml:"ca_cert_path" envconfig:"KAFKA_TLS_CA_CERT_PATH"`
	ClientCertPath     string `yaml:"client_cert_path" envconfig:"KAFKA_TLS_CLIENT_CERT_PATH"`
	ClientKeyPath      string `yaml:"client_key_path" envconfig:"KAFKA_TLS_CLIENT_KEY_PATH"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" envconfig:"KAFKA_TLS_INSECURE_SKIP_VERIFY"`
}

// SASLConfig configures broker authentication. Supported mechanisms are
// PLAIN, SCRAM-SHA-256 and SCRAM-SHA-512.
type SASLConfig struct {
	Enabled   bool   `yaml:"enabled" envconfig:"KAFKA_SASL_ENABLED"`
	Mechanism string `yaml:"mechanism" envconfig:"KAFKA_SASL_MECHANISM"`
	Username  string `yaml:"username" envconfig:"KAFKA_SASL_USERNAME"`
	Password  string `yaml:"password" envconfig:"KAFKA_SASL_PASSWORD"`
}
