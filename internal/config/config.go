// Package config loads server configuration from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds everything the server binary needs to start.
type Config struct {
	Addr          string        `env:"ADDR,default=:8080"`
	DBPath        string        `env:"DB_PATH,default=data/receiptsplit.db"`
	JWTSecret     string        `env:"JWT_SECRET,required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,default=24h"`
	ClockInterval time.Duration `env:"CLOCK_INTERVAL,default=1s"`
	LogLevel      string        `env:"LOG_LEVEL,default=info"`
}

// Load reads the optional .env file and decodes the environment. A missing
// .env file is fine; a missing JWT_SECRET is not.
func Load() (*Config, error) {
	_ = godotenv.Load() // allow .env for local runs

	cfg := new(Config)
	if err := envdecode.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
