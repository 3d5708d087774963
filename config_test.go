package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Directories, cfg.Directories)
	assert.Equal(t, ".truth", cfg.Extensions.Truth)
	assert.Equal(t, PassBoth, cfg.PassOn)
	assert.False(t, cfg.Neo4j.Enabled())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
directories: [basics, classes]
extensions:
  candidate: .cg
generator: [node, js-callgraph.js, --cg, "{source}"]
generator_timeout: 2m
pass_on: without-natives
neo4j:
  uri: bolt://graph:7687
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"basics", "classes"}, cfg.Directories)
	assert.Equal(t, Extensions{Source: ".js", Candidate: ".cg", Truth: ".truth"}, cfg.Extensions)
	assert.Equal(t, []string{"node", "js-callgraph.js", "--cg", "{source}"}, cfg.Generator)
	assert.Equal(t, 2*time.Minute, cfg.GeneratorTimeout)
	assert.Equal(t, PassWithoutNatives, cfg.PassOn)
	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Neo4j.User)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("CGEVAL_NEO4J_URI", "neo4j://db:7687")
	t.Setenv("CGEVAL_NEO4J_USER", "eval")
	t.Setenv("CGEVAL_NEO4J_PASS", "secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Neo4jConfig{URI: "neo4j://db:7687", User: "eval", Password: "secret"}, cfg.Neo4j)
	assert.True(t, cfg.Neo4j.Enabled())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("directories: {"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("pass_on: sometimes\n"), 0o644))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "unknown pass_on")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no directories", func(c *Config) { c.Directories = nil }, "no suite directories"},
		{"bare extension", func(c *Config) { c.Extensions.Truth = "truth" }, "truth extension"},
		{"same extensions", func(c *Config) { c.Extensions.Candidate = ".truth" }, "must differ"},
		{"generator without timeout", func(c *Config) {
			c.Generator = []string{"jscg"}
			c.GeneratorTimeout = 0
		}, "generator_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}
