package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 10*time.Second, c.CallTimeout)
	assert.Equal(t, "session.db", c.SessionDBPath)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsWithoutSources(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"server_endpoint_addr": "json:1",
		"session_db_path":      "/tmp/json.db",
	})
	os.Args = []string{"testbin", "-c", path, "-a", "flag:2"}

	cfg := LoadConfig()

	assert.Equal(t, "flag:2", cfg.ServerEndpointAddr)
	assert.Equal(t, "/tmp/json.db", cfg.SessionDBPath)
}
