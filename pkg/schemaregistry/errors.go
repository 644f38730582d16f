package schemaregistry

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the schema registry client and the
// serializers/deserializers built on top of it. Callers should match them
// with errors.Is since most paths wrap them with additional context.
var (
	// ErrNoData is returned when a payload is too short to carry the
	// five byte wire envelope (magic byte plus schema id).
	ErrNoData = errors.New("schemaregistry: not enough bytes to contain the wire envelope")

	// ErrNoMagicByte is returned when a payload does not start with the
	// Confluent magic byte 0x0.
	ErrNoMagicByte = errors.New("schemaregistry: payload does not start with the magic byte")

	// ErrIncorrectSchemaType is returned when the schema resolved for a
	// message was parsed under a different format than the one the
	// serializer or deserializer was built for.
	ErrIncorrectSchemaType = errors.New("schemaregistry: schema format does not match the requested format")

	// ErrIDNotReturned is returned when a registry response that should
	// carry a schema id does not contain one.
	ErrIDNotReturned = errors.New("schemaregistry: registry response carried no schema id")

	// ErrSchemaNotFound is returned when the registry answers 404 for a
	// schema id or a subject/version pair.
	ErrSchemaNotFound = errors.New("schemaregistry: schema not found")

	// ErrDeserializationFailed is returned when a payload was structurally
	// valid but decoding produced no value, for example an empty JSON body.
	ErrDeserializationFailed = errors.New("schemaregistry: deserialization produced no value")

	// ErrInvalidInput is returned when a lookup is attempted without a
	// subject naming strategy or a positive schema id.
	ErrInvalidInput = errors.New("schemaregistry: a subject naming strategy or schema id is required")

	// ErrFormatNotSupported is returned for schema formats the client
	// knows about but cannot encode or decode, currently PROTOBUF.
	ErrFormatNotSupported = errors.New("schemaregistry: schema format not supported")
)

// RegistryError carries the HTTP status and the error body returned by the
// registry for non-404 failures. The registry reports a machine readable
// error code alongside a human readable message, for example code 42201 for
// an invalid schema.
type RegistryError struct {
	// StatusCode is the HTTP status of the failed request.
	StatusCode int

	// Code is the registry specific error code from the response body.
	Code int

	// Message is the human readable error message from the response body.
	Message string
}

func (e *RegistryError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("schemaregistry: registry returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("schemaregistry: registry returned status %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// IsSchemaNotFound reports whether the error is a registry 404 for a schema
// id or subject. This is a convenience wrapper around errors.Is.
func IsSchemaNotFound(err error) bool {
	return errors.Is(err, ErrSchemaNotFound)
}

// IsRegistryError unwraps a RegistryError from err if one is present.
func IsRegistryError(err error) (*RegistryError, bool) {
	var regErr *RegistryError
	if errors.As(err, &regErr) {
		return regErr, true
	}
	return nil, false
}
