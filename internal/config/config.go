package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "PANTRYPAL_"

// Config holds process settings read from PANTRYPAL_* environment variables.
type Config struct {
	Env          string
	Port         string
	DBPath       string
	LogLevel     string
	LogFormat    string
	JWTSecret    string
	JWTTTL       time.Duration
	// RateLimit caps register and login attempts per client IP in each
	// RateWindow; APIRateLimit caps authenticated calls per caller.
	RateLimit    int
	APIRateLimit int
	RateWindow   time.Duration
	// Origins are the host patterns allowed to open a websocket from a
	// browser on another origin.
	Origins      []string
}

// devSecret is used only when PANTRYPAL_ENV=dev and no secret is set.
const devSecret = "pantrypal-dev-secret"

// FromEnv reads configuration from the process environment.
func FromEnv() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(envPrefix + key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Env:       get("ENV", "production"),
		Port:      get("PORT", "8080"),
		DBPath:    get("DB_PATH", "pantrypal.db"),
		LogLevel:  get("LOG_LEVEL", "info"),
		LogFormat: get("LOG_FORMAT", "text"),
		JWTSecret: get("JWT_SECRET", ""),
	}

	for _, o := range strings.Split(get("ALLOWED_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.Origins = append(cfg.Origins, o)
		}
	}

	var errs []error
	var err error
	if cfg.JWTTTL, err = time.ParseDuration(get("JWT_TTL", "24h")); err != nil || cfg.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("%sJWT_TTL must be a positive duration", envPrefix))
	}
	if cfg.RateWindow, err = time.ParseDuration(get("RATE_WINDOW", "1m")); err != nil || cfg.RateWindow <= 0 {
		errs = append(errs, fmt.Errorf("%sRATE_WINDOW must be a positive duration", envPrefix))
	}
	if cfg.RateLimit, err = strconv.Atoi(get("RATE_LIMIT", "60")); err != nil || cfg.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("%sRATE_LIMIT must be a positive integer", envPrefix))
	}
	if cfg.APIRateLimit, err = strconv.Atoi(get("API_RATE_LIMIT", "600")); err != nil || cfg.APIRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("%sAPI_RATE_LIMIT must be a positive integer", envPrefix))
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%sLOG_FORMAT must be text or json", envPrefix))
	}
	if cfg.JWTSecret == "" {
		if cfg.IsDev() {
			cfg.JWTSecret = devSecret
		} else {
			errs = append(errs, fmt.Errorf("%sJWT_SECRET is required", envPrefix))
		}
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c Config) IsDev() bool {
	return c.Env == "dev"
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
