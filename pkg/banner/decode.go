package banner

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/bannerkit/pkg/errors"
)

// SupportedSchema is the schema major version this package understands.
const SupportedSchema = "v1"

// DefaultSchemaVersion is assumed when a configuration omits schemaVersion.
const DefaultSchemaVersion = "v1.0.0"

var (
	// ErrInvalidSchema is returned when schemaVersion is not a semantic version.
	ErrInvalidSchema = stderrors.New("banner: invalid schema version")
	// ErrUnsupportedSchema is returned for a schema major version other than v1.
	ErrUnsupportedSchema = stderrors.New("banner: unsupported schema version")
	// ErrEmptyConfig is returned when the input holds no document.
	ErrEmptyConfig = stderrors.New("banner: empty configuration")
)

// Decode parses a banner configuration from YAML or JSON.
func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("banner: read configuration: %w", err)
	}
	return Parse(data)
}

// Parse parses a banner configuration from YAML or JSON bytes.
func Parse(data []byte) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyConfig
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("banner: parse configuration: %w", err)
	}
	version, err := CanonicalSchemaVersion(cfg.SchemaVersion)
	if err != nil {
		return nil, err
	}
	cfg.SchemaVersion = version
	return &cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("banner: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// CanonicalSchemaVersion validates a schema version and returns it in
// canonical "vX.Y.Z" form. A missing leading "v" is tolerated.
func CanonicalSchemaVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultSchemaVersion, nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSchema, v)
	}
	if semver.Major(v) != SupportedSchema {
		return "", fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedSchema, v, SupportedSchema)
	}
	return semver.Canonical(v), nil
}

// Encode writes the configuration as YAML.
func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("banner: encode configuration: %w", err)
	}
	return enc.Close()
}

var yamlKinds = map[yaml.Kind]string{
	yaml.DocumentNode: "document",
	yaml.SequenceNode: "sequence",
	yaml.MappingNode:  "mapping",
	yaml.ScalarNode:   "scalar",
	yaml.AliasNode:    "alias",
}

// shapeError reports a YAML node of the wrong kind for field.
func shapeError(field string, value *yaml.Node, reason string) error {
	return &errors.ParseError{
		Field:  field,
		Value:  fmt.Sprintf("%s at line %d", yamlKinds[value.Kind], value.Line),
		Reason: reason,
	}
}
