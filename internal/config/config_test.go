package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEODASH_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, "generated", cfg.Source.Kind)
	require.Equal(t, 5000, cfg.Source.Count)
	require.Equal(t, 200*time.Millisecond, cfg.Source.Latency)
	require.Equal(t, 10, cfg.View.PageSize)
	require.False(t, cfg.Auth.Enabled)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geodash.yaml")
	yaml := `
server:
  port: 9000
log:
  level: debug
source:
  kind: s3
  latency: 50ms
  s3:
    bucket: datasets
    key: projects.jsonl
    path_style: true
view:
  page_size: 25
  location: UTC
auth:
  enabled: true
  tokens:
    secret-a: analyst
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("GEODASH_CONFIG_PATH", path)
	t.Setenv("GEODASH_SERVER_PORT", "9100")
	t.Setenv("GEODASH_S3_REGION", "eu-west-1")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "s3", cfg.Source.Kind)
	require.Equal(t, 50*time.Millisecond, cfg.Source.Latency)
	require.Equal(t, S3Config{Bucket: "datasets", Key: "projects.jsonl", Region: "eu-west-1", PathStyle: true}, cfg.Source.S3)
	require.Equal(t, 25, cfg.View.PageSize)
	require.Equal(t, map[string]string{"secret-a": "analyst"}, cfg.Auth.Tokens)

	loc, err := cfg.View.TimeLocation()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)
}

func TestLoad_EnvTokens(t *testing.T) {
	t.Setenv("GEODASH_AUTH_TOKENS", "tok1=alice, tok2=bob")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, map[string]string{"tok1": "alice", "tok2": "bob"}, cfg.Auth.Tokens)

	t.Setenv("GEODASH_AUTH_TOKENS", "tok1")
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_InvalidEnv(t *testing.T) {
	for name, value := range map[string]string{
		"GEODASH_SERVER_PORT":    "eighty",
		"GEODASH_SOURCE_COUNT":   "many",
		"GEODASH_SOURCE_SEED":    "-1",
		"GEODASH_SOURCE_LATENCY": "soon",
		"GEODASH_VIEW_PAGE_SIZE": "ten",
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"source kind":    func(c *Config) { c.Source.Kind = "ftp" },
		"page size":      func(c *Config) { c.View.PageSize = 30 },
		"location":       func(c *Config) { c.View.Location = "Mars/Olympus" },
		"transport":      func(c *Config) { c.Transport.Mode = "grpc" },
		"auth no tokens": func(c *Config) { c.Auth.Enabled = true },
		"negative count": func(c *Config) { c.Source.Count = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, Default().Validate())
}
