package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func TestDir_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.Equal(t, filepath.Join(dir, "pawnshop"), Dir())
	require.Equal(t, filepath.Join(dir, "pawnshop", "config.yaml"), Path())
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(context.Background(), "", envconfig.MapLookuper(nil))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), envconfig.MapLookuper(nil))
	require.Error(t, err)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://shop.example/api/v1/
debounce: 500ms
page_size: 20
log_level: debug
`), 0o600))

	cfg, err := Load(context.Background(), path, envconfig.MapLookuper(map[string]string{
		"PAWNSHOP_PAGE_SIZE":     "25",
		"PAWNSHOP_TRACE":         "true",
		"PAWNSHOP_OTLP_ENDPOINT": "http://collector:4318",
	}))
	require.NoError(t, err)
	require.Equal(t, "https://shop.example/api/v1/", cfg.APIURL)
	require.Equal(t, 500*time.Millisecond, cfg.Debounce)
	require.Equal(t, 25, cfg.PageSize)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.Trace)
	require.Equal(t, "http://collector:4318", cfg.OTLPEndpoint)
	require.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.TokenStore = StorePostgres
	require.Error(t, cfg.Validate())
	cfg.DSN = "postgres://localhost/pawnshop"
	require.NoError(t, cfg.Validate())

	cfg.APIURL = "/api/v1"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.TokenStore = "redis"
	require.Error(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.PageSize = 15
	require.NoError(t, cfg.Save(path))

	got, err := Load(context.Background(), path, envconfig.MapLookuper(nil))
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}
