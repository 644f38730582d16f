package schemaregistry

import (
	"fmt"

	"github.com/hamba/avro/v2"
)

// parseAvroSchema compiles Avro schema text. Schemas that reference named
// types from other subjects are not resolved here; the registry reference
// list is forwarded on registration but fetched schemas must be self
// contained.
func parseAvroSchema(raw string) (*Schema, error) {
	parsed, err := avro.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse avro schema: %w", err)
	}

	return &Schema{
		format: Avro,
		raw:    raw,
		avro:   parsed,
	}, nil
}

// encodeAvroValue serializes v with Avro binary encoding. Structs are mapped
// to records via their avro struct tags, map[string]any works as well.
func encodeAvroValue(s *Schema, v any) ([]byte, error) {
	data, err := avro.Marshal(s.avro, v)
	if err != nil {
		return nil, fmt.Errorf("encode avro value: %w", err)
	}
	return data, nil
}

// decodeAvroValue deserializes Avro binary data into v. The target must be a
// pointer to a value the schema can be decoded into.
func decodeAvroValue(s *Schema, data []byte, v any) error {
	if err := avro.Unmarshal(s.avro, data, v); err != nil {
		return fmt.Errorf("decode avro value: %w", err)
	}
	return nil
}
