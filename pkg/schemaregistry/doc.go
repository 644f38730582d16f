// Package schemaregistry provides a caching client for the Confluent Schema
// Registry together with serializers and deserializers for the Confluent
// wire format.
//
// Every message produced with this package carries a five byte envelope: a
// magic byte (0x0) followed by the schema id as a big endian uint32. The
// payload after the envelope is encoded according to the schema's format,
// Avro binary encoding for AVRO schemas and schema-validated JSON for JSON
// schemas. The same envelope is what the Confluent serializers for other
// languages produce, so messages interoperate in both directions.
//
// Core Features:
//   - Schema resolution by id, by subject and pinned version, or by subject
//     and latest version
//   - A grow-only in-process cache, so each schema is fetched from the
//     registry roughly once per process
//   - Schema registration and compatibility checks
//   - The five subject naming strategies used by Confluent clients
//   - A single-schema deserializer for topics that never mix schemas
//   - Optional structured logging, Prometheus metrics and OpenTelemetry
//     spans around registry calls
//
// Basic Usage:
//
//	client, err := schemaregistry.NewClient(schemaregistry.Config{
//		URL: "http://localhost:8081",
//	})
//	if err != nil {
//		return err
//	}
//
//	details := schemaregistry.SchemaDetails{
//		Format:   schemaregistry.Avro,
//		Strategy: schemaregistry.TopicNameStrategy{Topic: "orders"},
//	}
//
//	serializer, err := client.GetSerializer(ctx, details)
//	if err != nil {
//		return err
//	}
//
//	wire, err := serializer.Serialize(order)
//	if err != nil {
//		return err
//	}
//
//	// wire can now be produced to Kafka. The consumer side mirrors it:
//	deserializer := client.GetDeserializer(schemaregistry.Avro)
//
//	var decoded Order
//	if err := deserializer.Deserialize(ctx, wire, &decoded); err != nil {
//		return err
//	}
//
// Caching:
//
// The client keeps three tables: id to schema, subject and version to id,
// and subject to latest id. The id table is authoritative; subject lookups
// resolve to an id and then to the schema. Entries are never evicted. An id
// can never point at different schema text in the registry, so the id table
// is insert-once; only the latest pointer of a subject moves, and it is
// refreshed whenever a latest lookup misses. Lookups never block each
// other: two goroutines racing on a cold entry may both fetch, and both end
// up with the same cached schema instance.
//
// Single-Schema Topics:
//
// GetDeserializer resolves the schema id of every message, which is one
// cache lookup per message. For topics that are known to carry exactly one
// schema, GetCachedDeserializer holds the schema resolved from the first
// message for its whole lifetime:
//
//	deserializer := client.GetCachedDeserializer(schemaregistry.Avro)
//	for msg := range messages {
//		var decoded Order
//		if err := deserializer.Deserialize(ctx, msg.Value, &decoded); err != nil {
//			...
//		}
//	}
//
// Later messages still get their envelope validated, but their schema id is
// trusted to match the held schema. Use the plain Deserializer when a topic
// can interleave schemas.
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		schemaregistry.FXModule,
//		fx.Provide(
//			func() schemaregistry.Config {
//				return schemaregistry.Config{URL: os.Getenv("SCHEMA_REGISTRY_URL")}
//			},
//			func(l *logger.Logger) schemaregistry.Logger { return l },
//		),
//	)
//
// The module attaches the logger and a metrics observer when the container
// provides them and runs without either otherwise.
//
// Thread Safety:
//
// The Client, Serializer, Deserializer and CachedDeserializer types are all
// safe for concurrent use by multiple goroutines.
package schemaregistry
