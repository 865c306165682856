package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               int     `envconfig:"PORT" default:"8080"`
	LogLevel           string  `envconfig:"LOG_LEVEL" default:"info"`
	UseContainerBounds bool    `envconfig:"USE_CONTAINER_BOUNDS" default:"false"`
	MaxObjectExtent    int     `envconfig:"MAX_OBJECT_EXTENT" default:"0"`
	Workers            int     `envconfig:"WORKERS" default:"4"`
	JWTSecret          string  `envconfig:"JWT_SECRET"`
	AllowedOrigins     string  `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	PlaybackFPS        float64 `envconfig:"PLAYBACK_FPS" default:"24"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Origins splits AllowedOrigins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// AuthEnabled reports whether the HTTP API requires a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}
