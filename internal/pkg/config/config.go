package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// SessionSecret signs the session-handle cookie. When empty a random
	// secret is generated at boot, invalidating all handles on restart —
	// fine for development, set it in production.
	SessionSecret string `env:"SESSION_SECRET"`

	// FrontendOrigin is the browser origin allowed to call the API with
	// credentials.
	FrontendOrigin string `env:"FRONTEND_ORIGIN, default=http://localhost:3000"`

	// CheckpointWorkers sets the number of async click-checkpoint workers.
	CheckpointWorkers int `env:"CHECKPOINT_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=clicker"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
	// KeyPrefix namespaces every session cache key.
	KeyPrefix string `env:"REDIS_KEY_PREFIX, default=clicker"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
