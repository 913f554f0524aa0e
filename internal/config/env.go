package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are process-level values read from the environment.
type Settings struct {
	GRPCAddr      string  `env:"ARENA_GRPC_ADDR" envDefault:"127.0.0.1:50051"`
	DBPath        string  `env:"ARENA_DB_PATH" envDefault:"arena.db"`
	MemoryStore   bool    `env:"ARENA_MEMORY_STORE"` // keep everything in process memory
	ConfigDir     string  `env:"ARENA_CONFIG_DIR"`
	Profile       string  `env:"ARENA_PROFILE"`
	Seed          uint64  `env:"ARENA_SEED"` // 0 uses the crypto source
	AdminUsername string  `env:"ARENA_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string  `env:"ARENA_ADMIN_PASSWORD" envDefault:"admin"`
	RateLimit     float64 `env:"ARENA_RATE_LIMIT" envDefault:"50"` // requests per second, 0 disables
	RateBurst     int     `env:"ARENA_RATE_BURST" envDefault:"100"`
	WatchConfig   bool    `env:"ARENA_WATCH_CONFIG" envDefault:"true"`
	DrawCost      *int    `env:"ARENA_DRAW_COST"`
}

// ParseEnv populates target from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Overrides converts environment overrides into config Overrides.
func (s Settings) Overrides() Overrides {
	return Overrides{CostPerCard: s.DrawCost}
}
