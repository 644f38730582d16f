package schemaregistry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserverCountsCacheTraffic(t *testing.T) {
	ctx := context.Background()
	registry := prometheus.NewRegistry()
	observer := NewObserver(registry)

	fetcher := newFakeFetcher()
	fetcher.addSchema(1, orderAvroSchema)
	client := NewClientWithFetcher(fetcher).WithObserver(observer)

	if _, err := client.GetSchemaByID(ctx, 1, Avro); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	if _, err := client.GetSchemaByID(ctx, 1, Avro); err != nil {
		t.Fatalf("second lookup: %v", err)
	}

	if got := testutil.ToFloat64(observer.cacheMisses.WithLabelValues(lookupID)); got != 1 {
		t.Errorf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(observer.cacheHits.WithLabelValues(lookupID)); got != 1 {
		t.Errorf("expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(observer.fetches.WithLabelValues(lookupID)); got != 1 {
		t.Errorf("expected 1 fetch, got %v", got)
	}
	if got := testutil.ToFloat64(observer.fetchErrors.WithLabelValues(lookupID)); got != 0 {
		t.Errorf("expected no fetch errors, got %v", got)
	}
}

func TestObserverCountsFetchErrors(t *testing.T) {
	ctx := context.Background()
	registry := prometheus.NewRegistry()
	observer := NewObserver(registry)

	client := NewClientWithFetcher(newFakeFetcher()).WithObserver(observer)

	if _, err := client.GetSchemaByID(ctx, 7, Avro); err == nil {
		t.Fatal("expected the lookup to fail")
	}

	if got := testutil.ToFloat64(observer.fetchErrors.WithLabelValues(lookupID)); got != 1 {
		t.Errorf("expected 1 fetch error, got %v", got)
	}
}

func TestObserverDistinguishesSubjectLookups(t *testing.T) {
	ctx := context.Background()
	registry := prometheus.NewRegistry()
	observer := NewObserver(registry)

	fetcher := newFakeFetcher()
	fetcher.addSubjectVersion("orders-value", 2, orderAvroSchema)
	client := NewClientWithFetcher(fetcher).WithObserver(observer)

	details := SchemaDetails{Format: Avro, Strategy: TopicNameStrategy{Topic: "orders"}}
	if _, err := client.GetSchemaBySubject(ctx, details); err != nil {
		t.Fatalf("latest lookup: %v", err)
	}

	details.Version = 1
	if _, err := client.GetSchemaBySubject(ctx, details); err != nil {
		t.Fatalf("pinned lookup: %v", err)
	}

	if got := testutil.ToFloat64(observer.cacheMisses.WithLabelValues(lookupSubjectLatest)); got != 1 {
		t.Errorf("expected 1 latest miss, got %v", got)
	}
	// The latest fetch pinned version 1, so the pinned lookup is a hit.
	if got := testutil.ToFloat64(observer.cacheHits.WithLabelValues(lookupSubjectPinned)); got != 1 {
		t.Errorf("expected 1 pinned hit, got %v", got)
	}
}

func TestObserverNilReceiverIsSafe(t *testing.T) {
	var observer *Observer

	observer.CacheHit(lookupID)
	observer.CacheMiss(lookupID)
	observer.Fetch(lookupID, time.Millisecond, nil)

	// The client takes the same path when no observer is attached.
	ctx := context.Background()
	fetcher := newFakeFetcher()
	fetcher.addSchema(1, orderAvroSchema)
	client := NewClientWithFetcher(fetcher)

	if _, err := client.GetSchemaByID(ctx, 1, Avro); err != nil {
		t.Fatalf("lookup without observer: %v", err)
	}
}
