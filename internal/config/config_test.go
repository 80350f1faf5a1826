package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DEVSOCIAL_ADDR", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devsocial.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
db: /var/lib/devsocial.db
token_ttl: 2h
cors_origins: ["https://a.example"]
llm:
  model: gpt-4o-mini
rate_limits:
  like_per_min: 5
`), 0o600))

	t.Setenv("PORT", "")
	t.Setenv("DEVSOCIAL_ADDR", "")
	t.Setenv("DEVSOCIAL_DB", "override.db")
	t.Setenv("DEVSOCIAL_CORS_ORIGINS", "https://b.example, https://c.example")
	t.Setenv("DEVSOCIAL_RL_FOLLOW_PER_MIN", "7")
	t.Setenv("DEVSOCIAL_TOKEN_TTL", "garbage")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "override.db", cfg.DBPath)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL, "unparsable env keeps the file value")
	assert.Equal(t, []string{"https://b.example", "https://c.example"}, cfg.CORSOrigins)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.RateLimits.LikePerMinute)
	assert.Equal(t, 7, cfg.RateLimits.FollowPerMinute)
	assert.Equal(t, 30, cfg.RateLimits.CommentPerMinute)
}

func TestPortFallback(t *testing.T) {
	t.Setenv("DEVSOCIAL_ADDR", "")
	t.Setenv("PORT", "3000")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
