package schemaregistry

import (
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/xeipuuv/gojsonschema"
)

// Format identifies the schema language a schema is written in. The values
// match the schemaType strings used by the Confluent Schema Registry API.
type Format string

const (
	// Avro schemas are encoded with Avro binary encoding.
	Avro Format = "AVRO"

	// JSON schemas validate JSON documents against a JSON Schema.
	JSON Format = "JSON"

	// Protobuf is recognized on the wire but not supported yet. Every
	// attempt to parse, encode or decode it fails with ErrFormatNotSupported.
	Protobuf Format = "PROTOBUF"
)

func (f Format) String() string {
	return string(f)
}

// schemaType returns the value for the schemaType field of registry write
// requests. The registry treats a missing schemaType as AVRO, so AVRO is
// reported as the empty string.
func (f Format) schemaType() string {
	if f == Avro {
		return ""
	}
	return string(f)
}

// parse compiles raw schema text into a Schema for this format.
func (f Format) parse(raw string) (*Schema, error) {
	switch f {
	case Avro:
		return parseAvroSchema(raw)
	case JSON:
		return parseJSONSchema(raw)
	case Protobuf:
		return nil, fmt.Errorf("parse %s schema: %w", f, ErrFormatNotSupported)
	default:
		return nil, fmt.Errorf("parse schema: unknown format %q: %w", string(f), ErrFormatNotSupported)
	}
}

// Schema is a parsed, ready to use schema. Instances are created by the
// client when a registry response is parsed and are shared through the
// cache, so a Schema must never be mutated after construction.
type Schema struct {
	format Format
	raw    string

	// Exactly one of the compiled forms below is set, matching format.
	avro avro.Schema
	json *gojsonschema.Schema
}

// Format returns the schema language this schema was parsed under.
func (s *Schema) Format() Format {
	return s.format
}

// Raw returns the schema text exactly as the registry returned it.
func (s *Schema) Raw() string {
	return s.raw
}

// encode serializes v according to the schema. The result is the bare
// payload without the wire envelope.
func (s *Schema) encode(v any) ([]byte, error) {
	switch s.format {
	case Avro:
		return encodeAvroValue(s, v)
	case JSON:
		return encodeJSONValue(s, v)
	default:
		return nil, fmt.Errorf("encode %s value: %w", s.format, ErrFormatNotSupported)
	}
}

// decode deserializes a bare payload into v according to the schema.
func (s *Schema) decode(data []byte, v any) error {
	switch s.format {
	case Avro:
		return decodeAvroValue(s, data, v)
	case JSON:
		return decodeJSONValue(s, data, v)
	default:
		return fmt.Errorf("decode %s value: %w", s.format, ErrFormatNotSupported)
	}
}

// SchemaRef pairs a parsed schema with the registry id it was stored under.
// The Schema pointer is shared with the client cache, so two refs resolved
// for the same id point at the same instance.
type SchemaRef struct {
	Schema *Schema
	ID     int
}
