package schemaregistry

import (
	"context"
	"fmt"
	"sync"
)

// Logger defines the interface for logging operations within the schema
// registry client. This interface allows for dependency injection of any
// compatible logger implementation.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=schemaregistry
type Logger interface {
	// Info logs informational messages with optional error and additional fields
	Info(msg string, err error, fields ...map[string]interface{})

	// Debug logs debug-level messages with optional error and additional fields
	Debug(msg string, err error, fields ...map[string]interface{})

	// Warn logs warning messages with optional error and additional fields
	Warn(msg string, err error, fields ...map[string]interface{})

	// Error logs error messages with the associated error and optional additional fields
	Error(msg string, err error, fields ...map[string]interface{})

	// Fatal logs critical error messages that typically require immediate attention
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Client resolves, caches and registers schemas against a Confluent Schema
// Registry. It is the factory for the serializers and deserializers in this
// package, which all share its cache.
//
// All methods are safe for concurrent use. The cache never evicts: schema
// ids are immutable in the registry, so an entry can only become stale for
// the "latest" pointer of a subject, which is refreshed on every miss.
type Client struct {
	fetcher  Fetcher
	logger   Logger
	observer *Observer

	// ids maps schema id to *Schema. Entries are inserted with
	// LoadOrStore so an id is never remapped to a different instance.
	ids sync.Map

	// subjectVersions maps subjectVersion to schema id.
	subjectVersions sync.Map

	// subjectLatest maps subject to the id of its latest known version.
	// Unlike ids this table may be overwritten by later fetches.
	subjectLatest sync.Map
}

// NewClient creates a client that talks to the registry configured in cfg
// over HTTP.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("schemaregistry: registry URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{fetcher: newHTTPFetcher(cfg)}, nil
}

// NewClientWithFetcher creates a client on top of a custom transport. Used
// by tests and by callers that do not reach the registry over plain HTTP.
func NewClientWithFetcher(fetcher Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

// WithLogger attaches a logger to the client and returns the client for
// method chaining. Without a logger the client stays silent.
func (c *Client) WithLogger(logger Logger) *Client {
	c.logger = logger
	return c
}

// WithObserver attaches an observer for cache and fetch metrics and returns
// the client for method chaining.
func (c *Client) WithObserver(observer *Observer) *Client {
	c.observer = observer
	return c
}

// RegisterSchema registers raw schema text under the subject derived from
// details and primes the cache with the assigned id and version, so a
// serializer created right after does not fetch again.
func (c *Client) RegisterSchema(ctx context.Context, details SchemaDetails, schema string) (SchemaRef, error) {
	if details.Strategy == nil {
		return SchemaRef{}, fmt.Errorf("register schema: %w", ErrInvalidInput)
	}
	registrar, ok := c.fetcher.(Registrar)
	if !ok {
		return SchemaRef{}, fmt.Errorf("schemaregistry: transport %T does not support registration", c.fetcher)
	}

	// Parse before talking to the registry so a malformed schema or an
	// unsupported format fails locally.
	parsed, err := details.Format.parse(schema)
	if err != nil {
		return SchemaRef{}, err
	}

	subject := details.Strategy.SubjectName()
	md, err := registrar.Register(ctx, subject, schema, details.Format, details.References)
	if err != nil {
		c.logError("Failed to register schema", err, map[string]interface{}{
			"subject": subject,
			"format":  details.Format.String(),
		})
		return SchemaRef{}, err
	}
	if md.ID <= 0 {
		return SchemaRef{}, fmt.Errorf("register subject %s: %w", subject, ErrIDNotReturned)
	}

	stored := c.storeByID(md.ID, parsed)
	if md.Version > 0 {
		c.subjectVersions.Store(subjectVersion{subject: subject, version: md.Version}, md.ID)
	}
	if details.Version == 0 {
		c.subjectLatest.Store(subject, md.ID)
	}

	c.logInfo("Registered schema", map[string]interface{}{
		"subject":   subject,
		"schema_id": md.ID,
		"version":   md.Version,
	})

	return SchemaRef{Schema: stored, ID: md.ID}, nil
}

// CheckCompatibility reports whether raw schema text is compatible with the
// latest version registered under the subject derived from details.
func (c *Client) CheckCompatibility(ctx context.Context, details SchemaDetails, schema string) (bool, error) {
	if details.Strategy == nil {
		return false, fmt.Errorf("check compatibility: %w", ErrInvalidInput)
	}
	registrar, ok := c.fetcher.(Registrar)
	if !ok {
		return false, fmt.Errorf("schemaregistry: transport %T does not support compatibility checks", c.fetcher)
	}

	return registrar.CheckCompatibility(ctx, details.Strategy.SubjectName(), schema, details.Format)
}

func (c *Client) logInfo(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, nil, fields)
	}
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, nil, fields)
	}
}

func (c *Client) logError(msg string, err error, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Error(msg, err, fields)
	}
}
