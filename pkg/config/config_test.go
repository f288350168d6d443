package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fleetd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("FLEETD_JWT_SECRET", testSecret)

	path := writeConfigFile(t, `
server:
  addr: "127.0.0.1:9090"
  advertise_url: "https://fleet.example.com"
database:
  dsn: "file:/tmp/test.db"
auth:
  token_ttl: 1h
liveness:
  interval: 10s
  timeout: 2m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, "https://fleet.example.com", cfg.Server.AdvertiseURL)
	assert.Equal(t, "file:/tmp/test.db", cfg.Database.DSN)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecretKey)
	assert.True(t, cfg.Liveness.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Liveness.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Liveness.Timeout)

	// Unspecified fields fall back to defaults.
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 1.0, cfg.Placement.WeightMemory)
	assert.Equal(t, 0.5, cfg.Placement.WeightDisk)
	assert.Equal(t, 2.0, cfg.Placement.WeightGPU)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("FLEETD_JWT_SECRET", testSecret)

	_, err := Load("/nonexistent/fleetd.yaml")
	assert.Error(t, err)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("FLEETD_JWT_SECRET", "")

	path := writeConfigFile(t, `server: {addr: "127.0.0.1:9090"}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FLEETD_JWT_SECRET")
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("FLEETD_JWT_SECRET", "too-short")

	path := writeConfigFile(t, `server: {addr: "127.0.0.1:9090"}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoad_ZeroPlacementWeight(t *testing.T) {
	t.Setenv("FLEETD_JWT_SECRET", testSecret)

	// Defaults are seeded before the file is unmarshaled, so an explicit
	// zero weight sticks instead of snapping back to the default.
	path := writeConfigFile(t, `placement: {weight_disk: 0.0}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Placement.WeightDisk)
	assert.Equal(t, 1.0, cfg.Placement.WeightMemory)
}

func TestLoad_LivenessDisabled(t *testing.T) {
	t.Setenv("FLEETD_JWT_SECRET", testSecret)

	path := writeConfigFile(t, `liveness: {enabled: false}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Liveness.Enabled)
}

func TestDefault(t *testing.T) {
	t.Setenv("FLEETD_JWT_SECRET", testSecret)

	cfg := Default()

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8080", cfg.Server.AdvertiseURL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Liveness.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Liveness.Timeout)
	assert.NoError(t, cfg.Validate())
}
