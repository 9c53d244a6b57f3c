package main

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Host           string   `env:"HOST" envDefault:"127.0.0.1"`
	Port           string   `env:"PORT" envDefault:"8080"`
	DBPath         string   `env:"LUMIS_DB_PATH" envDefault:"lumis.db"`
	RealmsPath     string   `env:"REALMS_PATH"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	LocalOnly      bool     `env:"LOCAL_ONLY" envDefault:"true"`
}

// LoadConfig reads .env (if present) and then the process environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// AllowOrigin accepts any http://localhost:PORT or 127.0.0.1 page during
// development plus the explicitly configured origins.
func (c Config) AllowOrigin(origin string) bool {
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if strings.TrimSpace(o) == origin {
			return true
		}
	}
	return false
}
