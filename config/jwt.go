package config

import (
	"log/slog"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-this-in-production"

type JWTConfig struct {
	Secret     []byte
	Expiration time.Duration
}

func loadJWT() JWTConfig {
	secret := envString("JWT_SECRET", "")
	if secret == "" {
		slog.Warn("JWT_SECRET not set, using the development secret",
			"event", "config_jwt_default_secret",
			"module", "config",
		)
		secret = defaultJWTSecret
	}
	expiration, err := envDuration("JWT_EXPIRATION", 24*time.Hour)
	if err != nil {
		expiration = 24 * time.Hour
	}
	return JWTConfig{
		Secret:     []byte(secret),
		Expiration: expiration,
	}
}
