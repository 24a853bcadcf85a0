package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"flywheel/pkg/fn"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	LogLevel slog.Level

	// Dispatch behaviour of the greet point
	Shadow fn.ShadowPolicy
	Strict bool

	// Catalog is an optional YAML file replacing the built-in greeting catalog
	Catalog string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) (Server, error) {
	cfg := Server{
		Addr:    getenv("FLYWHEEL_ADDR"),
		Catalog: getenv("FLYWHEEL_CATALOG"),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	shadow, err := fn.ParseShadowPolicy(getenv("FLYWHEEL_SHADOW"))
	if err != nil {
		return Server{}, fmt.Errorf("FLYWHEEL_SHADOW: %w", err)
	}
	cfg.Shadow = shadow

	if raw := getenv("FLYWHEEL_STRICT"); raw != "" {
		strict, err := strconv.ParseBool(raw)
		if err != nil {
			return Server{}, fmt.Errorf("FLYWHEEL_STRICT: %w", err)
		}
		cfg.Strict = strict
	}

	if raw := getenv("FLYWHEEL_LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
			return Server{}, fmt.Errorf("FLYWHEEL_LOG_LEVEL: %w", err)
		}
	}
	return cfg, nil
}
