// Package server provides configuration helpers that define runtime defaults
// and validation for the relay.
package server

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Config holds the server configuration settings.
type Config struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT,default=5001" validate:"min=1,max=65535"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS,default=*"`
	MaxMessageSize  int           `env:"MAX_MESSAGE_SIZE,default=65536" validate:"min=512"`
	SendBufferSize  int           `env:"SEND_BUFFER_SIZE,default=256" validate:"min=1"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"required"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`
	// TrustProxy takes the client address from X-Forwarded-For or X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy      bool          `env:"TRUST_PROXY,default=false"`
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	return &Config{
		Port:            5001,
		AllowedOrigins:  "*",
		MaxMessageSize:  64 * 1024,
		SendBufferSize:  256,
		LogLevel:        "INFO",
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadConfig reads an optional .env file, then the process environment.
// Unset variables fall back to the defaults in the struct tags.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Origins returns the configured websocket origins.
func (c *Config) Origins() []string {
	return parseOrigins(c.AllowedOrigins)
}

func parseOrigins(origins string) []string {
	if strings.TrimSpace(origins) == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
