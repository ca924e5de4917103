package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvMake, EnvInternalVars, EnvFormat, EnvView, EnvDot} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "graph", cfg.GraphName)
	assert.Equal(t, "pdf", cfg.Format)
	assert.Equal(t, "make", cfg.Make)
	assert.Equal(t, "dot", cfg.Dot)
	assert.True(t, cfg.ShouldView())
	assert.False(t, cfg.IncludeInternal)
	assert.False(t, cfg.IncludeIsolated)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yml := `graphName: vars
format: svg
view: false
includeIsolated: true
internalVars: internal.vars
ratio: "0.15"
clusters: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "makevargraph.yml"), []byte(yml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "vars", cfg.GraphName)
	assert.Equal(t, "svg", cfg.Format)
	assert.False(t, cfg.ShouldView())
	assert.True(t, cfg.IncludeIsolated)
	assert.Equal(t, "internal.vars", cfg.InternalVars)
	assert.Equal(t, "0.15", cfg.Ratio)
	assert.True(t, cfg.Clusters)
	assert.Equal(t, "make", cfg.Make, "unset keys keep their defaults")
}

func TestLoad_YAMLExtension(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "makevargraph.yaml"), []byte("make: gmake\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "gmake", cfg.Make)
}

func TestLoad_Malformed(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "makevargraph.yml"), []byte("format: [unterminated\n"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "makevargraph.yml"), []byte("make: gmake\nformat: svg\n"), 0o644))
	t.Setenv(EnvMake, "/opt/bin/make")
	t.Setenv(EnvFormat, "png")
	t.Setenv(EnvView, "false")
	t.Setenv(EnvDot, "/opt/graphviz/bin/dot")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/opt/bin/make", cfg.Make)
	assert.Equal(t, "png", cfg.Format)
	assert.Equal(t, "/opt/graphviz/bin/dot", cfg.Dot)
	assert.False(t, cfg.ShouldView())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvInternalVars+"=builtin.vars\n"), 0o644))
	// godotenv sets the variable for the process; restore it afterwards.
	t.Cleanup(func() { _ = os.Unsetenv(EnvInternalVars) })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "builtin.vars", cfg.InternalVars)
}

func TestLoad_BadViewOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvView, "sometimes")

	_, err := Load(t.TempDir())
	require.Error(t, err)
}
