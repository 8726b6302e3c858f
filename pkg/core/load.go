// pkg/core/load.go
package core

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	manifest "github.com/joeydtaylor/steeze-print/pkg/manifest"
	toml "github.com/pelletier/go-toml/v2"
)

// LoadConfig reads a destination manifest from disk.
func LoadConfig(path string) (manifest.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return manifest.Config{}, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes and validates a TOML manifest. SPOOL_DATABASE_URL,
// when set, replaces spool.dsn.
func ParseConfig(b []byte) (manifest.Config, error) {
	var cfg manifest.Config
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return manifest.Config{}, fmt.Errorf("manifest decode: %w", err)
	}
	if dsn := strings.TrimSpace(os.Getenv("SPOOL_DATABASE_URL")); dsn != "" {
		cfg.Spool.DSN = dsn
	}
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, err
	}
	return cfg, nil
}
