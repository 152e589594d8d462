package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Default()
	cfg.Auth.JWTSecret = "secret"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10, cfg.Pagination.PageSize)
	assert.Equal(t, 15, cfg.Posts.PreviewLength)
	assert.Equal(t, 20*time.Second, cfg.Cache.IndexTTL)
	assert.Equal(t, "media", cfg.Media.Root)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "missing secret", modify: func(c *Config) { c.Auth.JWTSecret = "" }, errMsg: "jwt_secret"},
		{name: "zero page size", modify: func(c *Config) { c.Pagination.PageSize = 0 }, errMsg: "page_size"},
		{name: "zero preview", modify: func(c *Config) { c.Posts.PreviewLength = 0 }, errMsg: "preview_length"},
		{name: "unknown media backend", modify: func(c *Config) { c.Media.Backend = "ftp" }, errMsg: "media.backend"},
		{name: "s3 without bucket", modify: func(c *Config) { c.Media.Backend = MediaBackendS3 }, errMsg: "s3_bucket"},
		{name: "unknown cache backend", modify: func(c *Config) { c.Cache.Backend = "memcached" }, errMsg: "cache.backend"},
		{name: "unknown log format", modify: func(c *Config) { c.Log.Format = "xml" }, errMsg: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.NotEmpty(t, xerrors.StackTrace(err), "validation errors carry a stack trace")
		})
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yatube.yaml")
	data := []byte(`
addr: ":9000"
auth:
  jwt_secret: from-file
pagination:
  page_size: 5
cache:
  index_ttl: 1m
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("YATUBE_ENV", "test")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("POSTS_PER_PAGE", "")
	t.Setenv("PREVIEW_LENGTH", "30")
	t.Setenv("MEDIA_ROOT", filepath.Join(dir, "media"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 5, cfg.Pagination.PageSize)
	assert.Equal(t, time.Minute, cfg.Cache.IndexTTL)
	assert.Equal(t, 30, cfg.Posts.PreviewLength)
	assert.Equal(t, filepath.Join(dir, "media"), cfg.Media.Root)
	assert.Equal(t, "test", cfg.Env)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("YATUBE_ENV", "test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("POSTS_PER_PAGE", "ten")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTS_PER_PAGE")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
