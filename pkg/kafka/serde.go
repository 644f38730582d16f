package kafka

import "context"

// Serializer encodes a value into the bytes written as a record body.
// The schema registry serializers satisfy this interface, so records can
// carry the wire envelope without this package importing them.
type Serializer interface {
	Serialize(v any) ([]byte, error)
}

// Deserializer decodes a record body into the caller's value. Both schema
// registry deserializer flavors satisfy this interface.
type Deserializer interface {
	Deserialize(ctx context.Context, data []byte, v any) error
}
