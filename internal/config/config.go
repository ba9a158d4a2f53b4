package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig gathers the settings needed to run the server.
type AppConfig struct {
	ListenAddr        string        `env:"LISTEN_ADDR"`
	Port              string        `env:"PORT" envDefault:"8080"`
	DatabasePath      string        `env:"DATABASE_PATH" envDefault:"dailyroutine.db"`
	JWTSecret         string        `env:"JWT_SECRET" envDefault:"dailyroutine-dev-secret"`
	TokenTTL          time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	GinMode           string        `env:"GIN_MODE" envDefault:"release"`
	SuperRootUserName string        `env:"SUPER_ROOT_USER_NAME"`
	SuperRootPassword string        `env:"SUPER_ROOT_PASSWORD"`
	SuperRootEmail    string        `env:"SUPER_ROOT_EMAIL"`
}

// Load reads the application config from the environment. A .env file in
// the working directory is applied first when present, for local runs.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}

	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}

	return cfg, nil
}
