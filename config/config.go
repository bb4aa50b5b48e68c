package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	MongoURI         string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB          string        `env:"MONGO_DB" envDefault:"murdermystery"`
	RedisURI         string        `env:"REDIS_URI" envDefault:"localhost:6379"`
	Port             string        `env:"PORT" envDefault:"8080"`
	PlayerCodeSecret string        `env:"PLAYER_CODE_SECRET" envDefault:"change-me-in-production"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty        bool          `env:"LOG_PRETTY" envDefault:"true"`
	StoreBackend     string        `env:"STORE_BACKEND" envDefault:"mongo"`
	CORSOrigins      string        `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	SnapshotTTL      time.Duration `env:"SNAPSHOT_TTL" envDefault:"10m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.StoreBackend {
	case BackendMongo, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return &cfg, nil
}

// RedisAddr strips a redis:// scheme so the value can be used as a dial address
func (c *Config) RedisAddr() string {
	return strings.TrimPrefix(c.RedisURI, "redis://")
}
