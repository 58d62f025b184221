package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultTokenTTLHours is how long a draft access token stays valid.
const DefaultTokenTTLHours = 72

// TokenConfig holds the signing settings for draft access tokens.
type TokenConfig struct {
	Secret   string
	TTLHours int
}

// NewTokenConfig reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS (default 72).
func NewTokenConfig() (*TokenConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	ttl := DefaultTokenTTLHours
	if raw := os.Getenv("JWT_EXPIRATION_HOURS"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		ttl = v
	}

	cfg := &TokenConfig{Secret: secret, TTLHours: ttl}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TTL returns the token lifetime.
func (c *TokenConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func (c *TokenConfig) normalize() error {
	if len(c.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.TTLHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.TTLHours)
	}
	return nil
}
