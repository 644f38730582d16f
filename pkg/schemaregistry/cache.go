package schemaregistry

import (
	"context"
	"fmt"
	"time"
)

// subjectVersion keys the pinned-version cache table.
type subjectVersion struct {
	subject string
	version int
}

// Lookup kinds. Used as metric labels and to pick the cache table.
const (
	lookupID            = "id"
	lookupSubjectPinned = "subject_version"
	lookupSubjectLatest = "subject_latest"
)

func subjectLookupKind(version int) string {
	if version > 0 {
		return lookupSubjectPinned
	}
	return lookupSubjectLatest
}

// GetSchemaByID resolves a schema id to a parsed schema, fetching from the
// registry at most until the id lands in the cache. Concurrent misses for
// the same id may each fetch; they all converge on the instance that was
// stored first. On a cache hit the schema is returned as stored, even when
// it was parsed under a different format than requested; the serializers
// and deserializers report that as ErrIncorrectSchemaType.
func (c *Client) GetSchemaByID(ctx context.Context, id int, format Format) (SchemaRef, error) {
	if id <= 0 {
		return SchemaRef{}, fmt.Errorf("resolve schema id %d: %w", id, ErrInvalidInput)
	}

	if cached, ok := c.cachedByID(id); ok {
		c.observer.CacheHit(lookupID)
		return SchemaRef{Schema: cached, ID: id}, nil
	}
	c.observer.CacheMiss(lookupID)

	start := time.Now()
	raw, err := c.fetcher.SchemaByID(ctx, id)
	c.observer.Fetch(lookupID, time.Since(start), err)
	if err != nil {
		c.logError("Failed to fetch schema from registry", err, map[string]interface{}{
			"schema_id": id,
		})
		return SchemaRef{}, err
	}

	parsed, err := format.parse(raw)
	if err != nil {
		return SchemaRef{}, err
	}

	stored := c.storeByID(id, parsed)
	c.logDebug("Cached schema fetched by id", map[string]interface{}{
		"schema_id": id,
		"format":    format.String(),
	})
	return SchemaRef{Schema: stored, ID: id}, nil
}

// GetSchemaBySubject resolves a schema through the subject derived from
// details, either a pinned version or the latest one. Fetch results
// populate the id table first and the subject tables after it, so a reader
// that sees a subject entry can always resolve the id behind it.
func (c *Client) GetSchemaBySubject(ctx context.Context, details SchemaDetails) (SchemaRef, error) {
	if details.Strategy == nil {
		return SchemaRef{}, fmt.Errorf("resolve subject: %w", ErrInvalidInput)
	}

	subject := details.Strategy.SubjectName()
	kind := subjectLookupKind(details.Version)

	if id, ok := c.cachedSubjectID(subject, details.Version); ok {
		if cached, ok := c.cachedByID(id); ok {
			c.observer.CacheHit(kind)
			return SchemaRef{Schema: cached, ID: id}, nil
		}
	}
	c.observer.CacheMiss(kind)

	start := time.Now()
	md, err := c.fetcher.SchemaBySubject(ctx, subject, details.Version)
	c.observer.Fetch(kind, time.Since(start), err)
	if err != nil {
		c.logError("Failed to fetch subject from registry", err, map[string]interface{}{
			"subject": subject,
			"version": details.Version,
		})
		return SchemaRef{}, err
	}
	if md.ID <= 0 {
		return SchemaRef{}, fmt.Errorf("subject %s: %w", subject, ErrIDNotReturned)
	}

	parsed, err := details.Format.parse(md.Schema)
	if err != nil {
		return SchemaRef{}, err
	}

	stored := c.storeByID(md.ID, parsed)
	if details.Version > 0 {
		c.subjectVersions.Store(subjectVersion{subject: subject, version: details.Version}, md.ID)
	} else {
		// A latest fetch also pins the concrete version it reported, and
		// the latest pointer may move forward on the next miss.
		if md.Version > 0 {
			c.subjectVersions.Store(subjectVersion{subject: subject, version: md.Version}, md.ID)
		}
		c.subjectLatest.Store(subject, md.ID)
	}

	c.logDebug("Cached schema fetched by subject", map[string]interface{}{
		"subject":   subject,
		"schema_id": md.ID,
		"version":   md.Version,
	})
	return SchemaRef{Schema: stored, ID: md.ID}, nil
}

func (c *Client) cachedByID(id int) (*Schema, bool) {
	v, ok := c.ids.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Schema), true
}

func (c *Client) cachedSubjectID(subject string, version int) (int, bool) {
	if version > 0 {
		v, ok := c.subjectVersions.Load(subjectVersion{subject: subject, version: version})
		if !ok {
			return 0, false
		}
		return v.(int), true
	}

	v, ok := c.subjectLatest.Load(subject)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

// storeByID inserts a parsed schema under its id. The first insert wins, so
// an id is never remapped and concurrent fetches of the same id converge on
// a single instance.
func (c *Client) storeByID(id int, parsed *Schema) *Schema {
	actual, _ := c.ids.LoadOrStore(id, parsed)
	return actual.(*Schema)
}
