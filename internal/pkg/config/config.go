package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig
	Chat  ChatConfig
	Auth  AuthConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=collective"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type ChatConfig struct {
	FanoutWorkers int           `env:"CHAT_FANOUT_WORKERS, default=8"`
	SendLimit     int           `env:"CHAT_SEND_LIMIT,     default=20"`
	SendWindow    time.Duration `env:"CHAT_SEND_WINDOW,    default=10s"`
	// AllowedOrigins is a comma separated list; empty accepts any origin.
	AllowedOrigins string `env:"WS_ALLOWED_ORIGINS"`
}

type AuthConfig struct {
	RateLimit  int           `env:"AUTH_RATE_LIMIT,  default=10"`
	RateWindow time.Duration `env:"AUTH_RATE_WINDOW, default=1m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Origins splits AllowedOrigins into trimmed, non-empty entries.
func (c ChatConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
