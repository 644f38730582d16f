package schemaregistry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// contentType is the media type the Confluent Schema Registry speaks.
const contentType = "application/vnd.schemaregistry.v1+json"

// tracerName is the instrumentation scope for registry spans.
const tracerName = "serde.schemaregistry"

// Fetcher retrieves raw schema text from a registry. The client only needs
// these two reads; everything else (parsing, caching, wire format) happens
// on top of them. Swapping the Fetcher out is the seam used by tests and by
// deployments that front the registry with something else.
type Fetcher interface {
	// SchemaByID returns the schema text registered under the given id.
	SchemaByID(ctx context.Context, id int) (string, error)

	// SchemaBySubject returns the schema registered under a subject.
	// A version of zero or less requests the latest version.
	SchemaBySubject(ctx context.Context, subject string, version int) (Metadata, error)
}

// Registrar is the optional write side of a registry transport. The HTTP
// transport implements it; fetch-only transports may not.
type Registrar interface {
	// Register stores a schema under a subject and returns the id and
	// version the registry assigned to it.
	Register(ctx context.Context, subject, schema string, format Format, references []Reference) (Metadata, error)

	// CheckCompatibility reports whether a schema is compatible with the
	// latest version registered under the subject.
	CheckCompatibility(ctx context.Context, subject, schema string, format Format) (bool, error)
}

// Metadata is the registry's description of one registered schema version.
type Metadata struct {
	ID      int    `json:"id"`
	Version int    `json:"version"`
	Schema  string `json:"schema"`
	Subject string `json:"subject"`
	Type    string `json:"schemaType,omitempty"`
}

// registerRequest is the body of registry write requests. The schemaType
// field is omitted for AVRO, which the registry treats as the default.
type registerRequest struct {
	Schema     string      `json:"schema"`
	SchemaType string      `json:"schemaType,omitempty"`
	References []Reference `json:"references,omitempty"`
}

// httpFetcher talks to a Confluent Schema Registry over HTTP. It implements
// both Fetcher and Registrar.
type httpFetcher struct {
	baseURL    string
	httpClient *http.Client
	username   string
	password   string
	token      string
	tracer     trace.Tracer
}

func newHTTPFetcher(cfg Config) *httpFetcher {
	return &httpFetcher{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		username: cfg.Username,
		password: cfg.Password,
		token:    cfg.BearerToken,
		tracer:   otel.Tracer(tracerName),
	}
}

// SchemaByID fetches the schema text stored under an id.
func (f *httpFetcher) SchemaByID(ctx context.Context, id int) (string, error) {
	ctx, span := f.tracer.Start(ctx, "schemaregistry.fetch_schema_by_id",
		trace.WithAttributes(attribute.Int("schema.id", id)))
	defer span.End()

	var result struct {
		Schema string `json:"schema"`
	}
	if err := f.send(ctx, http.MethodGet, fmt.Sprintf("/schemas/ids/%d", id), nil, &result); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("fetch schema %d: %w", id, err)
	}
	return result.Schema, nil
}

// SchemaBySubject fetches the schema registered under a subject, either a
// pinned version or the latest one.
func (f *httpFetcher) SchemaBySubject(ctx context.Context, subject string, version int) (Metadata, error) {
	path := fmt.Sprintf("/subjects/%s/versions/latest", url.PathEscape(subject))
	if version > 0 {
		path = fmt.Sprintf("/subjects/%s/versions/%d", url.PathEscape(subject), version)
	}

	ctx, span := f.tracer.Start(ctx, "schemaregistry.fetch_schema_by_subject",
		trace.WithAttributes(
			attribute.String("registry.subject", subject),
			attribute.Int("registry.version", version),
		))
	defer span.End()

	var md Metadata
	if err := f.send(ctx, http.MethodGet, path, nil, &md); err != nil {
		span.RecordError(err)
		return Metadata{}, fmt.Errorf("fetch subject %s: %w", subject, err)
	}
	md.Subject = subject

	if md.ID <= 0 {
		err := fmt.Errorf("subject %s: %w", subject, ErrIDNotReturned)
		span.RecordError(err)
		return Metadata{}, err
	}
	return md, nil
}

// Register stores a schema under a subject. The registry only returns the id
// on creation, so a lookup request follows to learn the concrete version the
// schema ended up under.
func (f *httpFetcher) Register(ctx context.Context, subject, schema string, format Format, references []Reference) (Metadata, error) {
	ctx, span := f.tracer.Start(ctx, "schemaregistry.register_schema",
		trace.WithAttributes(
			attribute.String("registry.subject", subject),
			attribute.String("schema.format", format.String()),
		))
	defer span.End()

	body := registerRequest{
		Schema:     schema,
		SchemaType: format.schemaType(),
		References: references,
	}

	var created struct {
		ID int `json:"id"`
	}
	if err := f.send(ctx, http.MethodPost, "/subjects/"+url.PathEscape(subject)+"/versions", body, &created); err != nil {
		span.RecordError(err)
		return Metadata{}, fmt.Errorf("register subject %s: %w", subject, err)
	}

	var md Metadata
	if err := f.send(ctx, http.MethodPost, "/subjects/"+url.PathEscape(subject), body, &md); err != nil {
		span.RecordError(err)
		return Metadata{}, fmt.Errorf("look up registered subject %s: %w", subject, err)
	}
	if md.ID <= 0 {
		md.ID = created.ID
	}
	if md.Schema == "" {
		md.Schema = schema
	}
	md.Subject = subject

	return md, nil
}

// CheckCompatibility asks the registry whether a schema is compatible with
// the latest version registered under the subject.
func (f *httpFetcher) CheckCompatibility(ctx context.Context, subject, schema string, format Format) (bool, error) {
	ctx, span := f.tracer.Start(ctx, "schemaregistry.check_compatibility",
		trace.WithAttributes(attribute.String("registry.subject", subject)))
	defer span.End()

	body := registerRequest{
		Schema:     schema,
		SchemaType: format.schemaType(),
	}

	var result struct {
		IsCompatible bool `json:"is_compatible"`
	}
	path := fmt.Sprintf("/compatibility/subjects/%s/versions/latest", url.PathEscape(subject))
	if err := f.send(ctx, http.MethodPost, path, body, &result); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("check compatibility for subject %s: %w", subject, err)
	}
	return result.IsCompatible, nil
}

// send performs one registry request. 404 responses are mapped to
// ErrSchemaNotFound, other failure statuses to a RegistryError carrying the
// decoded error body.
func (f *httpFetcher) send(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", contentType)
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	f.authorize(req)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		if regErr := decodeRegistryError(resp); regErr.Message != "" {
			return fmt.Errorf("%w (%s)", ErrSchemaNotFound, regErr.Message)
		}
		return ErrSchemaNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeRegistryError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode registry response: %w", err)
	}
	return nil
}

// authorize sets the auth header. A bearer token wins over basic auth.
func (f *httpFetcher) authorize(req *http.Request) {
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
		return
	}
	if f.username != "" {
		req.SetBasicAuth(f.username, f.password)
	}
}

func decodeRegistryError(resp *http.Response) *RegistryError {
	regErr := &RegistryError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return regErr
	}

	var apiErr struct {
		ErrorCode int    `json:"error_code"`
		Message   string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		regErr.Code = apiErr.ErrorCode
		regErr.Message = apiErr.Message
	} else {
		regErr.Message = strings.TrimSpace(string(body))
	}
	return regErr
}
