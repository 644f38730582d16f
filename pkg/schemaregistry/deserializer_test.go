package schemaregistry

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"
)

func serializeOrder(t *testing.T, client *Client, topic string, v order) []byte {
	t.Helper()

	serializer, err := client.GetSerializer(context.Background(), SchemaDetails{
		Format:   Avro,
		Strategy: TopicNameStrategy{Topic: topic},
	})
	if err != nil {
		t.Fatalf("create serializer: %v", err)
	}

	wire, err := serializer.Serialize(v)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return wire
}

func TestDeserializeRejectsShortMessages(t *testing.T) {
	ctx := context.Background()
	client := NewClientWithFetcher(newFakeFetcher())

	var decoded order
	for _, data := range [][]byte{nil, {}, {0x0}, {0x0, 0x0, 0x0, 0x1}} {
		err := client.GetDeserializer(Avro).Deserialize(ctx, data, &decoded)
		if !errors.Is(err, ErrNoData) {
			t.Errorf("expected ErrNoData for %d bytes, got %v", len(data), err)
		}

		err = client.GetCachedDeserializer(Avro).Deserialize(ctx, data, &decoded)
		if !errors.Is(err, ErrNoData) {
			t.Errorf("expected ErrNoData from the cached deserializer for %d bytes, got %v", len(data), err)
		}
	}
}

func TestDeserializeRejectsMissingMagicByte(t *testing.T) {
	ctx := context.Background()
	client := NewClientWithFetcher(newFakeFetcher())
	data := []byte{0xff, 0x0, 0x0, 0x0, 0x1, 'x'}

	var decoded order
	err := client.GetDeserializer(Avro).Deserialize(ctx, data, &decoded)
	if !errors.Is(err, ErrNoMagicByte) {
		t.Fatalf("expected ErrNoMagicByte, got %v", err)
	}

	err = client.GetCachedDeserializer(Avro).Deserialize(ctx, data, &decoded)
	if !errors.Is(err, ErrNoMagicByte) {
		t.Fatalf("expected ErrNoMagicByte from the cached deserializer, got %v", err)
	}
}

func TestDeserializerResolvesEachSchemaID(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	fetcher.addSubjectVersion("orders-value", 1, orderAvroSchema)
	fetcher.addSubjectVersion("shipments-value", 2, orderAvroSchema)
	client := NewClientWithFetcher(fetcher)

	first := serializeOrder(t, client, "orders", order{A: 1, B: "one"})
	second := serializeOrder(t, client, "shipments", order{A: 2, B: "two"})

	deserializer := client.GetDeserializer(Avro)

	var decoded order
	if err := deserializer.Deserialize(ctx, first, &decoded); err != nil {
		t.Fatalf("deserialize first: %v", err)
	}
	if decoded.B != "one" {
		t.Errorf("expected first payload, got %+v", decoded)
	}

	if err := deserializer.Deserialize(ctx, second, &decoded); err != nil {
		t.Fatalf("deserialize second: %v", err)
	}
	if decoded.B != "two" {
		t.Errorf("expected second payload, got %+v", decoded)
	}
}

func TestCachedDeserializerSkipsLaterIDs(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	fetcher.addSubjectVersion("orders-value", 10, orderAvroSchema)
	client := NewClientWithFetcher(fetcher)

	wire := serializeOrder(t, client, "orders", order{A: 100, B: "test"})
	deserializer := client.GetCachedDeserializer(Avro)

	var decoded order
	if err := deserializer.Deserialize(ctx, wire, &decoded); err != nil {
		t.Fatalf("deserialize first message: %v", err)
	}
	if ref, ok := deserializer.Ref(); !ok || ref.ID != 10 {
		t.Fatalf("expected the deserializer to hold schema 10, got %v %v", ref, ok)
	}

	// A later message with an unknown id is decoded with the held schema;
	// the id is not resolved again since the topic carries one schema.
	foreign := append(EncodeSchemaID(999), wire[5:]...)
	if err := deserializer.Deserialize(ctx, foreign, &decoded); err != nil {
		t.Fatalf("deserialize message with foreign id: %v", err)
	}
	if decoded.A != 100 || decoded.B != "test" {
		t.Errorf("expected payload decoded with held schema, got %+v", decoded)
	}
	if got := fetcher.idFetches.Load(); got != 0 {
		t.Errorf("expected no id fetches for the foreign id, got %d", got)
	}
}

func TestCachedDeserializerPopulatesOnce(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	fetcher.addSchema(10, orderAvroSchema)
	client := NewClientWithFetcher(fetcher)

	// Serialize through a separate client so the reader's cache stays
	// cold and the fetch counter only sees the deserializer's resolution.
	payloadClient := NewClientWithFetcher(func() *fakeFetcher {
		f := newFakeFetcher()
		f.addSubjectVersion("orders-value", 10, orderAvroSchema)
		return f
	}())
	wire := serializeOrder(t, payloadClient, "orders", order{A: 7, B: "seven"})

	deserializer := client.GetCachedDeserializer(Avro)

	var group errgroup.Group
	for i := 0; i < 16; i++ {
		group.Go(func() error {
			var decoded order
			return deserializer.Deserialize(ctx, wire, &decoded)
		})
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("concurrent first use failed: %v", err)
	}

	// The singleflight group collapses all racing first messages into a
	// single resolution.
	if got := fetcher.idFetches.Load(); got != 1 {
		t.Errorf("expected exactly one registry fetch, got %d", got)
	}
}

func TestCachedDeserializerRetriesAfterFailure(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	client := NewClientWithFetcher(fetcher)

	payloadClient := NewClientWithFetcher(func() *fakeFetcher {
		f := newFakeFetcher()
		f.addSubjectVersion("orders-value", 10, orderAvroSchema)
		return f
	}())
	wire := serializeOrder(t, payloadClient, "orders", order{A: 7, B: "seven"})

	deserializer := client.GetCachedDeserializer(Avro)

	var decoded order
	if err := deserializer.Deserialize(ctx, wire, &decoded); !IsSchemaNotFound(err) {
		t.Fatalf("expected ErrSchemaNotFound while the registry is empty, got %v", err)
	}
	if _, ok := deserializer.Ref(); ok {
		t.Fatal("expected a failed population to leave the deserializer empty")
	}

	fetcher.addSchema(10, orderAvroSchema)
	if err := deserializer.Deserialize(ctx, wire, &decoded); err != nil {
		t.Fatalf("expected the next message to retry, got %v", err)
	}
	if decoded.B != "seven" {
		t.Errorf("expected decoded payload, got %+v", decoded)
	}
	if _, ok := deserializer.Ref(); !ok {
		t.Fatal("expected the deserializer to hold the schema after the retry")
	}
}

func TestDeserializerWrongFormat(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	fetcher.addSchema(6, orderJSONSchema)
	client := NewClientWithFetcher(fetcher)

	// Resolve id 6 as JSON first; the Avro deserializers then meet a
	// cached schema of the wrong format.
	if _, err := client.GetSchemaByID(ctx, 6, JSON); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	wire := append(EncodeSchemaID(6), []byte(`{"a":1,"b":"x"}`)...)

	var decoded order
	err := client.GetDeserializer(Avro).Deserialize(ctx, wire, &decoded)
	if !errors.Is(err, ErrIncorrectSchemaType) {
		t.Fatalf("expected ErrIncorrectSchemaType, got %v", err)
	}

	err = client.GetCachedDeserializer(Avro).Deserialize(ctx, wire, &decoded)
	if !errors.Is(err, ErrIncorrectSchemaType) {
		t.Fatalf("expected ErrIncorrectSchemaType from the cached deserializer, got %v", err)
	}
}

func TestDeserializeEmptyJSONPayload(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	fetcher.addSchema(6, orderJSONSchema)
	client := NewClientWithFetcher(fetcher)

	wire := EncodeSchemaID(6)

	var decoded order
	err := client.GetDeserializer(JSON).Deserialize(ctx, wire, &decoded)
	if !errors.Is(err, ErrDeserializationFailed) {
		t.Fatalf("expected ErrDeserializationFailed, got %v", err)
	}
}

func TestDeserializeCorruptAvroPayload(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	fetcher.addSchema(3, orderAvroSchema)
	client := NewClientWithFetcher(fetcher)

	// 0x01 starts a string length the payload cannot satisfy.
	wire := append(EncodeSchemaID(3), 0x01)

	var decoded order
	if err := client.GetDeserializer(Avro).Deserialize(ctx, wire, &decoded); err == nil {
		t.Fatal("expected an error for a truncated avro payload")
	}
}
