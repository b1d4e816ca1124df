package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 5*time.Second, cfg.Hub.GatewayTimeout)
	assert.True(t, cfg.Hub.CleanupOnClose)
	assert.False(t, cfg.Hub.JoinNack)
	assert.Equal(t, 20, cfg.Hub.JoinRateLimit)
	assert.Equal(t, 10*time.Second, cfg.Hub.JoinRateInterval)
	require.Len(t, cfg.WebRTC.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.WebRTC.ICEServers[0].URLs)
}

func TestLoadFile(t *testing.T) {
	p := writeConfig(t, `
mode: debug
port: 9000
jwt_secret: file-secret
store:
  driver: memory
redis:
  addr: localhost:6379
  room_ttl: 1m
hub:
  join_nack: true
  evict_on_send_failure: true
  join_rate_limit: 0
webrtc:
  ice_servers:
    - urls: ["turn:turn.example.org:3478"]
      username: u
      credential: p
`)
	cfg, err := load(p)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Redis.RoomTTL)
	assert.True(t, cfg.Hub.JoinNack)
	assert.True(t, cfg.Hub.EvictOnSendFailure)
	assert.Equal(t, 0, cfg.Hub.JoinRateLimit)
	require.Len(t, cfg.WebRTC.ICEServers, 1)
	assert.Equal(t, "u", cfg.WebRTC.ICEServers[0].Username)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	p := writeConfig(t, "jwt_secret: file-secret\nstore:\n  driver: memory\n")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("HUB_JOIN_NACK", "true")

	cfg, err := load(p)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.True(t, cfg.Hub.JoinNack)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"no secret":      "store:\n  driver: memory\n",
		"mongo no uri":   "jwt_secret: s\nstore:\n  driver: mongo\n",
		"unknown driver": "jwt_secret: s\nstore:\n  driver: sqlite\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
