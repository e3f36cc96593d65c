package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ps-vitor/sub2lease-seed/internal/config"
	"github.com/ps-vitor/sub2lease-seed/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the seed variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvMongoURI, config.EnvMongoDB, config.EnvConfigFile, config.EnvLogLevel} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadConfig(config.Options{EnvFile: noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "Sub2Lease", cfg.Mongo.Database)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, domain.DefaultResources(), cfg.Resources)
	assert.Equal(t, []string{"users", "listings", "agreements"}, cfg.Collections())
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvMongoURI, "mongodb://db.internal:27018")
	t.Setenv(config.EnvMongoDB, "Staging")
	t.Setenv(config.EnvLogLevel, "debug")

	cfg, err := config.LoadConfig(config.Options{EnvFile: noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db.internal:27018", cfg.Mongo.URI)
	assert.Equal(t, "Staging", cfg.Mongo.Database)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, t.TempDir(), ".env", "MONGO_URI=mongodb://from-file:27017\nMONGO_DB=FromFile\n")

	cfg, err := config.LoadConfig(config.Options{EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "mongodb://from-file:27017", cfg.Mongo.URI)
	assert.Equal(t, "FromFile", cfg.Mongo.Database)
}

func TestLoadConfigEnvFileDoesNotOverrideProcessEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvMongoDB, "FromProcess")
	envFile := writeFile(t, t.TempDir(), ".env", "MONGO_DB=FromFile\n")

	cfg, err := config.LoadConfig(config.Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "FromProcess", cfg.Mongo.Database)
}

func TestLoadConfigYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "seed.yaml", `
mongo:
  database: Fixtures
resources:
  - collection: users
    path: fixtures/users.json
  - collection: globals
    path: fixtures/globals.json
log_level: warn
`)

	cfg, err := config.LoadConfig(config.Options{EnvFile: noEnvFile(t), ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, config.DefaultMongoURI, cfg.Mongo.URI)
	assert.Equal(t, "Fixtures", cfg.Mongo.Database)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []domain.Resource{
		{Collection: "users", Path: "fixtures/users.json"},
		{Collection: "globals", Path: "fixtures/globals.json"},
	}, cfg.Resources)
}

func TestLoadConfigYAMLFromEnvAndEnvWins(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "seed.yaml", "mongo:\n  database: Fixtures\n")
	t.Setenv(config.EnvConfigFile, path)
	t.Setenv(config.EnvMongoDB, "Override")

	cfg, err := config.LoadConfig(config.Options{EnvFile: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "Override", cfg.Mongo.Database)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		file string
	}{
		{name: "missing file", file: filepath.Join(dir, "nope.yaml")},
		{name: "unknown field", file: writeFile(t, dir, "unknown.yaml", "mongo:\n  host: x\n")},
		{name: "bad yaml", file: writeFile(t, dir, "bad.yaml", "resources: [\n")},
		{name: "resource without path", file: writeFile(t, dir, "nopath.yaml", "resources:\n  - collection: users\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := config.LoadConfig(config.Options{EnvFile: noEnvFile(t), ConfigFile: tt.file})
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	cfg.Resources = []domain.Resource{{Collection: "", Path: "data/x.json"}}
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidResource)

	cfg.Resources = []domain.Resource{{Collection: "users", Path: " "}}
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidResource)

	cfg.Resources = nil
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.Mongo.Database = ""
	assert.Error(t, cfg.Validate())
}
