package schemaregistry

import (
	"encoding/binary"
	"fmt"
)

// The Confluent wire format prefixes every message with a five byte
// envelope: one magic byte (0x0) followed by the schema id as a big endian
// uint32. The format specific payload starts at byte five.
const (
	magicByte   = 0x0
	envelopeLen = 5
)

// EncodeSchemaID returns the five byte wire envelope for a schema id.
// Serialized payloads are appended directly after it.
func EncodeSchemaID(schemaID int) []byte {
	buf := make([]byte, envelopeLen)
	buf[0] = magicByte
	binary.BigEndian.PutUint32(buf[1:], uint32(schemaID))
	return buf
}

// DecodeSchemaID splits a wire message into its schema id and the remaining
// payload. It returns ErrNoData when the message is shorter than the
// envelope and ErrNoMagicByte when the first byte is not 0x0.
func DecodeSchemaID(data []byte) (int, []byte, error) {
	if len(data) < envelopeLen {
		return 0, nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrNoData, len(data), envelopeLen)
	}
	if data[0] != magicByte {
		return 0, nil, fmt.Errorf("%w: first byte is 0x%x", ErrNoMagicByte, data[0])
	}

	schemaID := int(binary.BigEndian.Uint32(data[1:envelopeLen]))
	return schemaID, data[envelopeLen:], nil
}
