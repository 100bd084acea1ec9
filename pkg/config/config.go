// Package config holds the ambient configuration for the outline core:
// document-level defaults, the search runtime's field list, and pane-view
// defaults.
//
// Grounded on the teacher's pkg/config style — a Config struct assembled
// from nested sections, a Validate() method, and sensible zero-value
// defaults (_examples/straga-Mimir_lite/nornicdb/pkg/config/config.go) —
// and on its gopkg.in/yaml.v3 struct-tag decoding pattern used for
// pkg/nornicdb.Config and pkg/mcp.ServerConfig. Unlike the teacher, which
// loads from environment variables (it owns a process), this layer is a
// library with no process environment of its own, so configuration is
// loaded from a YAML document supplied by the caller.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DocumentConfig controls node/edge store defaults.
type DocumentConfig struct {
	// OrphanCleanupDefault is the default for remove_edge's
	// removeChildNodeIfOrphaned flag when a caller does not specify one.
	OrphanCleanupDefault bool `yaml:"orphan_cleanup_default"`
	// MaxHeadingLevel bounds Node.Metadata.HeadingLevel (spec.md §3: 1..5,
	// kept configurable so a deployment can raise it without an API change).
	MaxHeadingLevel int `yaml:"max_heading_level"`
}

// SearchConfig controls the search runtime's accepted field-scoped clauses.
type SearchConfig struct {
	// Fields lists the field names accepted by field:value clauses
	// (spec.md §4.9 leaves the exact set open; this is where it's fixed).
	Fields []string `yaml:"fields"`
}

// ViewConfig controls pane-row projection defaults.
type ViewConfig struct {
	// DefaultLayout is used for nodes whose metadata omits layout.
	DefaultLayout string `yaml:"default_layout"`
}

// Config is the full set of ambient configuration for one outline core
// instance.
type Config struct {
	Document DocumentConfig `yaml:"document"`
	Search   SearchConfig   `yaml:"search"`
	View     ViewConfig     `yaml:"view"`
}

var validLayouts = map[string]bool{
	"standard":  true,
	"paragraph": true,
	"numbered":  true,
}

// DefaultConfig returns the built-in defaults, usable without loading any
// YAML document.
func DefaultConfig() *Config {
	return &Config{
		Document: DocumentConfig{
			OrphanCleanupDefault: true,
			MaxHeadingLevel:      5,
		},
		Search: SearchConfig{
			Fields: []string{"text", "tag", "path", "type"},
		},
		View: ViewConfig{
			DefaultLayout: "standard",
		},
	}
}

// LoadFromYAML decodes a Config from a YAML document on top of
// DefaultConfig, so any field the document omits keeps DefaultConfig's
// value, then validates the result.
func LoadFromYAML(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first configuration error found, if any.
func (c *Config) Validate() error {
	if c.Document.MaxHeadingLevel < 1 || c.Document.MaxHeadingLevel > 9 {
		return fmt.Errorf("config: document.max_heading_level must be in 1..9, got %d", c.Document.MaxHeadingLevel)
	}
	if len(c.Search.Fields) == 0 {
		return fmt.Errorf("config: search.fields must not be empty")
	}
	if !validLayouts[c.View.DefaultLayout] {
		return fmt.Errorf("config: view.default_layout %q is not one of standard|paragraph|numbered", c.View.DefaultLayout)
	}
	return nil
}
