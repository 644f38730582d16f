package schemaregistry

import "time"

// DefaultTimeout is applied to registry HTTP requests when the
// configuration leaves Timeout unset.
const DefaultTimeout = 10 * time.Second

// Config holds the connection settings for a Confluent Schema Registry.
type Config struct {
	// URL is the registry endpoint, for example "http://localhost:8081".
	//
	// This setting can be configured via:
	//   - YAML configuration with the "url" key
	//   - Environment variable SCHEMA_REGISTRY_URL
	URL string `yaml:"url" envconfig:"SCHEMA_REGISTRY_URL"`

	// Username enables basic auth when set. Ignored when BearerToken is set.
	Username string `yaml:"username" envconfig:"SCHEMA_REGISTRY_USERNAME"`

	// Password is the basic auth password belonging to Username.
	Password string `yaml:"password" envconfig:"SCHEMA_REGISTRY_PASSWORD"`

	// BearerToken enables token auth when set and takes precedence over
	// basic auth credentials.
	BearerToken string `yaml:"bearer_token" envconfig:"SCHEMA_REGISTRY_BEARER_TOKEN"`

	// Timeout bounds every HTTP request to the registry.
	//
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" envconfig:"SCHEMA_REGISTRY_TIMEOUT"`
}
