package schemaregistry

import (
	"context"
	"fmt"
)

// Serializer encodes values against one resolved schema and prefixes the
// payload with the wire envelope for that schema's id. A Serializer is
// bound to the schema it was created with; create a new one to pick up a
// newer subject version.
//
// Serialize is safe for concurrent use.
type Serializer struct {
	ref    SchemaRef
	format Format
}

// GetSerializer resolves the schema described by details and returns a
// serializer bound to it. The resolution goes through the client cache, so
// repeated calls for the same subject do not hit the registry.
func (c *Client) GetSerializer(ctx context.Context, details SchemaDetails) (*Serializer, error) {
	ref, err := c.GetSchemaBySubject(ctx, details)
	if err != nil {
		return nil, err
	}

	return &Serializer{
		ref:    ref,
		format: details.Format,
	}, nil
}

// Serialize encodes v with the bound schema and returns the complete wire
// message: magic byte, big endian schema id, then the encoded payload.
func (s *Serializer) Serialize(v any) ([]byte, error) {
	if s.ref.Schema.Format() != s.format {
		return nil, fmt.Errorf("serialize as %s, schema %d is %s: %w",
			s.format, s.ref.ID, s.ref.Schema.Format(), ErrIncorrectSchemaType)
	}

	payload, err := s.ref.Schema.encode(v)
	if err != nil {
		return nil, fmt.Errorf("serialize value for schema %d: %w", s.ref.ID, err)
	}

	return append(EncodeSchemaID(s.ref.ID), payload...), nil
}

// Ref returns the schema the serializer is bound to.
func (s *Serializer) Ref() SchemaRef {
	return s.ref
}
