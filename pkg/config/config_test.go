package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	yamlDoc := []byte(`
document:
  orphan_cleanup_default: false
  max_heading_level: 6
search:
  fields: ["text"]
view:
  default_layout: paragraph
`)
	cfg, err := LoadFromYAML(yamlDoc)
	require.NoError(t, err)
	assert.False(t, cfg.Document.OrphanCleanupDefault)
	assert.Equal(t, 6, cfg.Document.MaxHeadingLevel)
	assert.Equal(t, []string{"text"}, cfg.Search.Fields)
	assert.Equal(t, "paragraph", cfg.View.DefaultLayout)
}

func TestLoadFromYAMLEmptyUsesDefaults(t *testing.T) {
	cfg, err := LoadFromYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidateRejectsBadHeadingLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Document.MaxHeadingLevel = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.Fields = nil
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.View.DefaultLayout = "bogus"
	assert.Error(t, cfg.Validate())
}
