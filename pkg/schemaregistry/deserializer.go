package schemaregistry

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Deserializer decodes wire messages by resolving the schema id of every
// message through the client cache. It handles topics that interleave
// multiple schema ids; for single-schema topics CachedDeserializer skips
// the per-message cache lookup.
//
// Deserialize is safe for concurrent use.
type Deserializer struct {
	client *Client
	format Format
}

// GetDeserializer returns a deserializer for the given format backed by the
// client cache.
func (c *Client) GetDeserializer(format Format) *Deserializer {
	return &Deserializer{
		client: c,
		format: format,
	}
}

// Deserialize validates the wire envelope, resolves the embedded schema id
// and decodes the payload into v. The target must be a pointer.
func (d *Deserializer) Deserialize(ctx context.Context, data []byte, v any) error {
	id, payload, err := DecodeSchemaID(data)
	if err != nil {
		return err
	}

	ref, err := d.client.GetSchemaByID(ctx, id, d.format)
	if err != nil {
		return err
	}

	return decodeForFormat(ref, d.format, payload, v)
}

// CachedDeserializer decodes wire messages for a topic that carries exactly
// one schema. The schema id of the first message is resolved once and held
// for the lifetime of the deserializer; later messages still get their
// envelope validated, but their schema id is not resolved again. Messages
// written under a different schema will decode incorrectly or fail, which
// is the contract the caller opts into.
//
// Deserialize is safe for concurrent use. When several goroutines race on
// the first message, exactly one resolves the schema and the others wait
// for its result. A failed resolution leaves the deserializer empty so a
// later message can retry.
type CachedDeserializer struct {
	client *Client
	format Format

	group singleflight.Group

	mu  sync.RWMutex
	ref *SchemaRef
}

// GetCachedDeserializer returns a single-schema deserializer for the given
// format backed by the client cache.
func (c *Client) GetCachedDeserializer(format Format) *CachedDeserializer {
	return &CachedDeserializer{
		client: c,
		format: format,
	}
}

// Deserialize validates the wire envelope and decodes the payload into v
// using the schema held by the deserializer, resolving it from the first
// message when empty.
func (d *CachedDeserializer) Deserialize(ctx context.Context, data []byte, v any) error {
	id, payload, err := DecodeSchemaID(data)
	if err != nil {
		return err
	}

	ref, err := d.schema(ctx, id)
	if err != nil {
		return err
	}

	return decodeForFormat(ref, d.format, payload, v)
}

// Ref returns the held schema, or false when no message has populated the
// deserializer yet.
func (d *CachedDeserializer) Ref() (SchemaRef, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.ref == nil {
		return SchemaRef{}, false
	}
	return *d.ref, true
}

func (d *CachedDeserializer) schema(ctx context.Context, id int) (SchemaRef, error) {
	d.mu.RLock()
	held := d.ref
	d.mu.RUnlock()
	if held != nil {
		return *held, nil
	}

	// The singleflight group collapses concurrent first messages into one
	// resolution; losers receive the winner's result. The winner's context
	// drives the fetch.
	v, err, _ := d.group.Do("populate", func() (interface{}, error) {
		d.mu.RLock()
		held := d.ref
		d.mu.RUnlock()
		if held != nil {
			return *held, nil
		}

		resolved, err := d.client.GetSchemaByID(ctx, id, d.format)
		if err != nil {
			return SchemaRef{}, err
		}

		d.mu.Lock()
		d.ref = &resolved
		d.mu.Unlock()
		return resolved, nil
	})
	if err != nil {
		return SchemaRef{}, err
	}
	return v.(SchemaRef), nil
}

// decodeForFormat checks the resolved schema against the format the
// deserializer was built for and decodes the payload.
func decodeForFormat(ref SchemaRef, format Format, payload []byte, v any) error {
	if ref.Schema.Format() != format {
		return fmt.Errorf("deserialize as %s, schema %d is %s: %w",
			format, ref.ID, ref.Schema.Format(), ErrIncorrectSchemaType)
	}

	if err := ref.Schema.decode(payload, v); err != nil {
		return fmt.Errorf("deserialize payload for schema %d: %w", ref.ID, err)
	}
	return nil
}
