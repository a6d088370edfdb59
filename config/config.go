// Package config provides Viper-based configuration loading.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// MatchmakingConfig bounds the session authority.
type MatchmakingConfig struct {
	// MaxPlayersPerRoom caps room membership.
	MaxPlayersPerRoom int `mapstructure:"max_players_per_room"`
	// MaxRooms caps the number of concurrent rooms.
	MaxRooms int `mapstructure:"max_rooms"`
}

// TransportConfig holds websocket keepalive settings.
type TransportConfig struct {
	// PingInterval is how often the server pings idle connections.
	PingInterval time.Duration `mapstructure:"ping_interval"`
	// PongWait is how long a connection may stay silent before it is
	// considered dead. Must exceed PingInterval.
	PongWait time.Duration `mapstructure:"pong_wait"`
	// WriteDeadline is the per-write timeout.
	WriteDeadline time.Duration `mapstructure:"write_deadline"`
}

// Config is the full server configuration.
type Config struct {
	// SessionListenAddr is the websocket session endpoint bind address.
	SessionListenAddr string `mapstructure:"session_listen_addr"`
	// APIListenAddr is the read-only ops API bind address.
	APIListenAddr string `mapstructure:"api_listen_addr"`

	LogLevel string `mapstructure:"log_level"`

	Matchmaking MatchmakingConfig `mapstructure:"matchmaking"`
	Transport   TransportConfig   `mapstructure:"transport"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("session_listen_addr", ":8888")
	v.SetDefault("api_listen_addr", ":8080")
	v.SetDefault("log_level", "debug")
	v.SetDefault("matchmaking.max_players_per_room", 8)
	v.SetDefault("matchmaking.max_rooms", 64)
	v.SetDefault("transport.ping_interval", 5*time.Second)
	v.SetDefault("transport.pong_wait", 7*time.Second)
	v.SetDefault("transport.write_deadline", 5*time.Second)
}

// Load reads configuration from an optional yaml file, the MATCHROOM_*
// environment and the given flag set, in ascending precedence.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("matchroom")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks bounds that would otherwise surface as confusing
// runtime behavior.
func (c *Config) Validate() error {
	var errs []error
	if c.Matchmaking.MaxPlayersPerRoom <= 0 {
		errs = append(errs, fmt.Errorf("matchmaking.max_players_per_room must be positive, got %d",
			c.Matchmaking.MaxPlayersPerRoom))
	}
	if c.Matchmaking.MaxRooms <= 0 {
		errs = append(errs, fmt.Errorf("matchmaking.max_rooms must be positive, got %d",
			c.Matchmaking.MaxRooms))
	}
	if c.Transport.PongWait <= c.Transport.PingInterval {
		errs = append(errs, fmt.Errorf("transport.pong_wait (%s) must exceed transport.ping_interval (%s)",
			c.Transport.PongWait, c.Transport.PingInterval))
	}
	return errors.Join(errs...)
}
