package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"http_addr":                       ":8181",
		"database_dsn":                    "postgres://db",
		"secret_key":                      "my_secret_key",
		"session_token_validity_duration": "48h",
		"csrf_token_validity_duration":    int64(time.Hour),
		"mail_from":                       "noreply@example.com",
		"mail_port":                       2525,
		"mail_timeout":                    "3s",
		"queue_redis_url":                 "redis://r:6379/0",
		"secure_cookies":                  false,
	})

	t.Run("long flag", func(t *testing.T) {
		setArgs(t, "-config", path)
		c := &Config{}
		c.LoadDefaults()
		parseJson(c)

		assert.Equal(t, ":8181", c.HTTPAddr)
		assert.Equal(t, "postgres://db", c.DatabaseDSN)
		assert.Equal(t, "my_secret_key", c.SecretKey)
		assert.Equal(t, 48*time.Hour, c.SessionTokenValidityDuration)
		assert.Equal(t, time.Hour, c.CSRFTokenValidityDuration)
		assert.Equal(t, 2525, c.MailPort)
		assert.Equal(t, 3*time.Second, c.MailTimeout)
		assert.Equal(t, "redis://r:6379/0", c.QueueRedisURL)
		assert.False(t, c.SecureCookies)
		// absent keys keep their defaults
		assert.Equal(t, ":50051", c.GRPCAddr)
		assert.Equal(t, 10, c.MailPoolSize)
	})

	t.Run("short flag", func(t *testing.T) {
		setArgs(t, "-c", path)
		c := &Config{}
		parseJson(c)
		assert.Equal(t, "my_secret_key", c.SecretKey)
	})

	t.Run("no flag", func(t *testing.T) {
		setArgs(t, "-a", ":1")
		c := &Config{SecretKey: "keep"}
		parseJson(c)
		assert.Equal(t, "keep", c.SecretKey)
	})

	t.Run("missing file panics", func(t *testing.T) {
		setArgs(t, "-c", filepath.Join(t.TempDir(), "nope.json"))
		assert.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("malformed file panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
		setArgs(t, "-c", bad)
		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}
