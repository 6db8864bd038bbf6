package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string `env:"PORT" envDefault:"8080"`
	DatabaseURL           string `env:"DATABASE_URL,required"`
	JWTSecret             string `env:"JWT_SECRET,required"`
	AccessTokenTTLMinutes int    `env:"ACCESS_TOKEN_TTL_MINUTES" envDefault:"30"`
}

// AccessTokenTTL returns the configured token lifetime as a duration.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if cfg.AccessTokenTTLMinutes <= 0 {
		cfg.AccessTokenTTLMinutes = 30
	}

	return cfg, nil
}
