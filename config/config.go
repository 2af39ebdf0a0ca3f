package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string
	AllowedOrigins []string
	RoomTTL        time.Duration
	SweepInterval  time.Duration
	Debug          bool
}

// Load reads configuration from the environment, with a .env file as
// fallback. Every knob has a default; rooms outlive a day at most unless
// overridden.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:     ":5000",
		AllowedOrigins: []string{"*"},
		RoomTTL:        24 * time.Hour,
		SweepInterval:  time.Hour,
	}

	if v, ok := os.LookupEnv("LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("ROOM_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ROOM_TTL: %w", err)
		}
		cfg.RoomTTL = d
	}
	if v, ok := os.LookupEnv("SWEEP_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
		}
		cfg.SweepInterval = d
	}
	cfg.Debug = os.Getenv("DEBUG") == "true"

	return cfg, nil
}
