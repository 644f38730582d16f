package schemaregistry

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
)

// parseJSONSchema compiles a JSON Schema document.
func parseJSONSchema(raw string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse json schema: %w", err)
	}

	return &Schema{
		format: JSON,
		raw:    raw,
		json:   compiled,
	}, nil
}

// encodeJSONValue marshals v and validates the resulting document against
// the schema. Values that do not satisfy the schema are rejected before
// anything reaches the wire.
func encodeJSONValue(s *Schema, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json value: %w", err)
	}
	if err := validateJSONDocument(s, data); err != nil {
		return nil, err
	}
	return data, nil
}

// decodeJSONValue validates the payload against the schema and unmarshals it
// into v. An empty payload is reported as ErrDeserializationFailed since it
// cannot contain a JSON document.
func decodeJSONValue(s *Schema, data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty json payload", ErrDeserializationFailed)
	}
	if err := validateJSONDocument(s, data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode json value: %w", err)
	}
	return nil
}

func validateJSONDocument(s *Schema, doc []byte) error {
	result, err := s.json.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate json document: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("json document violates schema: %s", strings.Join(problems, "; "))
	}
	return nil
}
