package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/cristianadrielbraun/wplaceqr/internal/qr"
)

// ErrParsingConfig is returned when environment variables cannot be parsed into Config.
var ErrParsingConfig = errors.New("failed to parse environment variables into config")

// Config holds everything the server reads from the environment.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// QRBackend is "auto", "yeqown" or "skip2".
	QRBackend string `env:"QR_BACKEND" envDefault:"auto"`
	MaxBorder int    `env:"QR_MAX_BORDER" envDefault:"64"`
	MaxScale  int    `env:"QR_MAX_SCALE" envDefault:"32"`

	// TextMaxPixels caps either side of a /text.png bitmap.
	TextMaxPixels int `env:"TEXT_MAX_PIXELS" envDefault:"4096"`

	// RateLimitRPS <= 0 disables rate limiting.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return Config{}, fmt.Errorf("%w: GIN_MODE must be debug, release or test", ErrParsingConfig)
	}
	if cfg.MaxBorder < 0 {
		return Config{}, fmt.Errorf("%w: QR_MAX_BORDER must be >= 0", ErrParsingConfig)
	}
	if cfg.MaxScale < 1 || cfg.MaxScale > qr.MaxScale {
		return Config{}, fmt.Errorf("%w: QR_MAX_SCALE must be between 1 and %d", ErrParsingConfig, qr.MaxScale)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
