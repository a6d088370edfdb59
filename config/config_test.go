package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8888", cfg.SessionListenAddr)
	assert.Equal(t, ":8080", cfg.APIListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Matchmaking.MaxPlayersPerRoom)
	assert.Equal(t, 64, cfg.Matchmaking.MaxRooms)
	assert.Equal(t, 5*time.Second, cfg.Transport.PingInterval)
	assert.Equal(t, 7*time.Second, cfg.Transport.PongWait)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
session_listen_addr: ":9999"
log_level: info
matchmaking:
  max_players_per_room: 2
transport:
  ping_interval: 10s
  pong_wait: 15s
`), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.SessionListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Matchmaking.MaxPlayersPerRoom)
	assert.Equal(t, 64, cfg.Matchmaking.MaxRooms, "unset keys keep defaults")
	assert.Equal(t, 10*time.Second, cfg.Transport.PingInterval)
	assert.Equal(t, 15*time.Second, cfg.Transport.PongWait)
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log_level", "debug", "")
	require.NoError(t, flags.Parse([]string{"--log_level=trace"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Matchmaking: MatchmakingConfig{MaxPlayersPerRoom: 8, MaxRooms: 64},
			Transport: TransportConfig{
				PingInterval:  5 * time.Second,
				PongWait:      7 * time.Second,
				WriteDeadline: 5 * time.Second,
			},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Matchmaking.MaxPlayersPerRoom = 0
	assert.ErrorContains(t, cfg.Validate(), "max_players_per_room")

	cfg = valid()
	cfg.Matchmaking.MaxRooms = -1
	assert.ErrorContains(t, cfg.Validate(), "max_rooms")

	cfg = valid()
	cfg.Transport.PongWait = cfg.Transport.PingInterval
	assert.ErrorContains(t, cfg.Validate(), "pong_wait")
}
