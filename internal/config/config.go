package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort      string `mapstructure:"SERVER_PORT"`
	PostgresURL     string `mapstructure:"POSTGRES_URL"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	MapZoomLevel    int    `mapstructure:"MAP_ZOOM_LEVEL"`
	TileURL         string `mapstructure:"TILE_URL"`
	TileAttribution string `mapstructure:"TILE_ATTRIBUTION"`
	LogMode         string `mapstructure:"LOG_MODE"`

	SessionIdleTimeout   time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	SessionSweepInterval time.Duration `mapstructure:"SESSION_SWEEP_INTERVAL"`
}

const (
	DefaultZoomLevel            = 13
	DefaultTileURL              = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultSessionIdleTimeout   = 30 * time.Minute
	DefaultSessionSweepInterval = time.Minute
	DefaultTileAttribution      = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

// Load reads the configuration from the environment. An empty POSTGRES_URL or
// REDIS_ADDR disables the corresponding backend.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("MAP_ZOOM_LEVEL", DefaultZoomLevel)
	v.SetDefault("TILE_URL", DefaultTileURL)
	v.SetDefault("TILE_ATTRIBUTION", DefaultTileAttribution)
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("SESSION_IDLE_TIMEOUT", DefaultSessionIdleTimeout)
	v.SetDefault("SESSION_SWEEP_INTERVAL", DefaultSessionSweepInterval)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	if cfg.MapZoomLevel <= 0 {
		cfg.MapZoomLevel = DefaultZoomLevel
	}
	if cfg.SessionIdleTimeout <= 0 {
		cfg.SessionIdleTimeout = DefaultSessionIdleTimeout
	}
	if cfg.SessionSweepInterval <= 0 {
		cfg.SessionSweepInterval = DefaultSessionSweepInterval
	}
	return cfg
}
